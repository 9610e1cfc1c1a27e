package booking

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	otpModel "lifeline-backend/models/otp"
)

// DriverDetails is the immutable snapshot of the assigned driver, captured at
// assignment time. It is intentionally not a foreign key: later edits to the
// live Driver row do not propagate here.
type DriverDetails struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Scan implements the Scanner interface for database deserialization
func (dd *DriverDetails) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, dd)
}

// Value implements the driver Valuer interface for database serialization
func (dd DriverDetails) Value() (driver.Value, error) {
	return json.Marshal(dd)
}

// AmbulanceDetails is the immutable snapshot of the assigned vehicle.
type AmbulanceDetails struct {
	ID            uint   `json:"id"`
	VehicleNumber string `json:"vehicle_number"`
	VehicleType   string `json:"vehicle_type"`
}

// Scan implements the Scanner interface for database deserialization
func (ad *AmbulanceDetails) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, ad)
}

// Value implements the driver Valuer interface for database serialization
func (ad AmbulanceDetails) Value() (driver.Value, error) {
	return json.Marshal(ad)
}

// Booking is the finalized assignment for an accepted BookingRequest. At most
// one Booking may exist per request (unique request_id).
type Booking struct {
	ID     uint          `gorm:"primaryKey;autoIncrement" json:"bookingId"`
	Status BookingStatus `gorm:"type:varchar(20);not null;default:pending" json:"status"`

	RequestID uint           `gorm:"not null;unique" json:"request_id"`
	Request   BookingRequest `gorm:"foreignKey:RequestID" json:"-"`

	AmbulanceDetails AmbulanceDetails `gorm:"type:json;not null" json:"ambulance_details"`
	DriverDetails    DriverDetails    `gorm:"type:json;not null" json:"driver_details"`

	OTP *otpModel.OTP `gorm:"foreignKey:BookingID" json:"otp,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
