package connection

import (
	bookingModel "lifeline-backend/models/booking"
	connectionModel "lifeline-backend/models/connection"
	driverModel "lifeline-backend/models/driver"
	hospitalModel "lifeline-backend/models/hospital"

	"gorm.io/gorm"
)

// GormRepository implements Repository against PostgreSQL.
type GormRepository struct {
	DB *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{DB: db}
}

func (r *GormRepository) DriverExists(id uint) (bool, error) {
	var count int64
	err := r.DB.Model(&driverModel.Driver{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *GormRepository) HospitalExists(id uint) (bool, error) {
	var count int64
	err := r.DB.Model(&hospitalModel.Hospital{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *GormRepository) PendingExists(driverID, hospitalID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&connectionModel.ConnectRequest{}).
		Where("driver_id = ? AND hospital_id = ? AND status = ?",
			driverID, hospitalID, connectionModel.StatusPending).
		Count(&count).Error
	return count > 0, err
}

func (r *GormRepository) Create(req *connectionModel.ConnectRequest) error {
	return r.DB.Create(req).Error
}

func (r *GormRepository) FindByID(id uint) (*connectionModel.ConnectRequest, error) {
	var req connectionModel.ConnectRequest
	err := r.DB.Preload("Driver").Preload("Hospital").First(&req, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *GormRepository) ListPendingByDriver(driverID uint) ([]connectionModel.ConnectRequest, error) {
	var requests []connectionModel.ConnectRequest
	err := r.DB.Preload("Driver").Preload("Hospital").
		Where("driver_id = ? AND status = ?", driverID, connectionModel.StatusPending).
		Find(&requests).Error
	return requests, err
}

func (r *GormRepository) ListPendingByHospital(hospitalID uint) ([]connectionModel.ConnectRequest, error) {
	var requests []connectionModel.ConnectRequest
	err := r.DB.Preload("Driver").Preload("Hospital").
		Where("hospital_id = ? AND status = ?", hospitalID, connectionModel.StatusPending).
		Find(&requests).Error
	return requests, err
}

func (r *GormRepository) Resolve(id uint, status connectionModel.Status, addMembership bool) (bool, error) {
	resolved := false
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&connectionModel.ConnectRequest{}).
			Where("id = ? AND status = ?", id, connectionModel.StatusPending).
			Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		resolved = true

		if addMembership {
			var req connectionModel.ConnectRequest
			if err := tx.First(&req, id).Error; err != nil {
				return err
			}
			// Idempotent add: re-accepting an existing pair is a no-op.
			if err := tx.Exec(`INSERT INTO hospital_drivers (hospital_id, driver_id)
				VALUES (?, ?) ON CONFLICT DO NOTHING`, req.HospitalID, req.DriverID).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return resolved, err
}

func (r *GormRepository) IsConnected(hospitalID, driverID uint) (bool, error) {
	var count int64
	err := r.DB.Table("hospital_drivers").
		Where("hospital_id = ? AND driver_id = ?", hospitalID, driverID).
		Count(&count).Error
	return count > 0, err
}

func (r *GormRepository) RemoveMembership(hospitalID, driverID uint) error {
	return r.DB.Exec("DELETE FROM hospital_drivers WHERE hospital_id = ? AND driver_id = ?",
		hospitalID, driverID).Error
}

func (r *GormRepository) DriverHasActiveBooking(driverID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&bookingModel.Booking{}).
		Where("status IN ? AND (driver_details->>'id')::bigint = ?",
			[]bookingModel.BookingStatus{bookingModel.BookingStatusPending, bookingModel.BookingStatusActive},
			driverID).
		Count(&count).Error
	return count > 0, err
}
