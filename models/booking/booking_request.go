package booking

import (
	"time"

	"lifeline-backend/models/citystate"
	hospitalModel "lifeline-backend/models/hospital"
	userModel "lifeline-backend/models/user"
)

// BookingRequest represents a patient's ask for an ambulance from a specific
// hospital. Rows are append-only: once the status is final the row is never
// mutated or deleted.
type BookingRequest struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	UserID uint           `gorm:"not null;index" json:"user_id"`
	User   userModel.User `gorm:"foreignKey:UserID" json:"-"`

	HospitalID uint                   `gorm:"not null;index" json:"hospital_id"`
	Hospital   hospitalModel.Hospital `gorm:"foreignKey:HospitalID" json:"-"`

	Name          string        `gorm:"type:varchar(100);not null" json:"name"`
	Age           int           `gorm:"not null" json:"age"`
	Sex           Sex           `gorm:"type:varchar(1);not null" json:"sex"`
	AmbulanceType AmbulanceType `gorm:"type:varchar(20);not null;default:Basic" json:"ambulance_type"`
	Status        RequestStatus `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`

	ReasonOfRejection *string `gorm:"type:varchar(255)" json:"reason_of_rejection"`

	// Inline pickup address fields
	Street    string   `gorm:"type:varchar(255)" json:"street"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	CityStateID uint                `gorm:"not null" json:"city_state_id"`
	CityState   citystate.CityState `gorm:"foreignKey:CityStateID" json:"city_state"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName sets the table name for the BookingRequest model
func (BookingRequest) TableName() string {
	return "booking_requests"
}

// PickupAddress is the denormalized pickup location exposed to clients.
type PickupAddress struct {
	Street     string   `json:"street"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	PostalCode string   `json:"postal_code"`
}

// Pickup builds the denormalized pickup address from the request row.
func (br *BookingRequest) Pickup() PickupAddress {
	return PickupAddress{
		Street:     br.Street,
		Latitude:   br.Latitude,
		Longitude:  br.Longitude,
		City:       br.CityState.City,
		State:      br.CityState.State,
		PostalCode: br.CityState.PostalCode,
	}
}
