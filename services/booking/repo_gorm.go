package booking

import (
	bookingModel "lifeline-backend/models/booking"
	hospitalModel "lifeline-backend/models/hospital"
	userModel "lifeline-backend/models/user"

	"gorm.io/gorm"
)

// GormRequestRepository implements RequestRepository against PostgreSQL.
type GormRequestRepository struct {
	DB *gorm.DB
}

func NewGormRequestRepository(db *gorm.DB) *GormRequestRepository {
	return &GormRequestRepository{DB: db}
}

func (r *GormRequestRepository) Create(req *bookingModel.BookingRequest) error {
	return r.DB.Create(req).Error
}

func (r *GormRequestRepository) FindByID(id uint) (*bookingModel.BookingRequest, error) {
	var req bookingModel.BookingRequest
	err := r.DB.Preload("CityState").First(&req, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *GormRequestRepository) ListByUser(userID uint) ([]bookingModel.BookingRequest, error) {
	var requests []bookingModel.BookingRequest
	err := r.DB.Preload("CityState").Where("user_id = ?", userID).Find(&requests).Error
	return requests, err
}

func (r *GormRequestRepository) ListByHospital(hospitalID uint) ([]bookingModel.BookingRequest, error) {
	var requests []bookingModel.BookingRequest
	err := r.DB.Preload("CityState").Where("hospital_id = ?", hospitalID).Find(&requests).Error
	return requests, err
}

func (r *GormRequestRepository) TransitionStatus(id uint, from []bookingModel.RequestStatus, to bookingModel.RequestStatus, reason *string) (bool, error) {
	updates := map[string]interface{}{"status": to}
	if reason != nil {
		updates["reason_of_rejection"] = *reason
	}
	// The status precondition in the WHERE clause is what decides races; the
	// row count tells the caller whether it won.
	res := r.DB.Model(&bookingModel.BookingRequest{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// GormBookingRepository implements BookingRepository against PostgreSQL.
type GormBookingRepository struct {
	DB *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{DB: db}
}

func (r *GormBookingRepository) FindByRequestID(requestID uint) (*bookingModel.Booking, error) {
	var b bookingModel.Booking
	err := r.DB.Preload("OTP").Where("request_id = ?", requestID).First(&b).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) CreateAssigned(b *bookingModel.Booking) (bool, error) {
	created := false
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&bookingModel.BookingRequest{}).
			Where("id = ? AND status = ?", b.RequestID, bookingModel.RequestStatusAccepted).
			Update("status", bookingModel.RequestStatusCompleted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		// Creates the OTP child row in the same transaction via the
		// association, so a booking without its OTP is never visible.
		if err := tx.Create(b).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}

// GormHospitalRepository implements HospitalRepository against PostgreSQL.
type GormHospitalRepository struct {
	DB *gorm.DB
}

func NewGormHospitalRepository(db *gorm.DB) *GormHospitalRepository {
	return &GormHospitalRepository{DB: db}
}

func (r *GormHospitalRepository) FindByID(id uint) (*hospitalModel.Hospital, error) {
	var h hospitalModel.Hospital
	err := r.DB.Preload("CityState").First(&h, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// GormUserRepository implements UserRepository against PostgreSQL.
type GormUserRepository struct {
	DB *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{DB: db}
}

func (r *GormUserRepository) FindByID(id uint) (*userModel.User, error) {
	var u userModel.User
	err := r.DB.First(&u, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
