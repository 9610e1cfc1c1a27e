package driver

import (
	"time"

	"lifeline-backend/models/citystate"
	hospitalModel "lifeline-backend/models/hospital"
)

// DriverStatus represents a driver's duty state.
type DriverStatus string

const (
	StatusAvailable DriverStatus = "available"
	StatusBusy      DriverStatus = "busy"
	StatusOffDuty   DriverStatus = "off-duty"
)

func (s DriverStatus) IsValid() bool {
	switch s {
	case StatusAvailable, StatusBusy, StatusOffDuty:
		return true
	default:
		return false
	}
}

// Driver represents an ambulance driver with a geocoded address. The
// hospital association is the bidirectional membership established by an
// accepted connection request.
type Driver struct {
	ID        uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string       `gorm:"type:varchar(100);not null" json:"name"`
	Email     string       `gorm:"type:varchar(100);not null;unique" json:"email"`
	Phone     string       `gorm:"type:varchar(20);not null" json:"phone"`
	Password  string       `gorm:"type:varchar(255);not null" json:"-"`
	Status    DriverStatus `gorm:"type:varchar(20);not null;default:available" json:"status"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`

	// Inline address fields
	Street    string   `gorm:"type:varchar(255)" json:"street"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	CityStateID uint                `gorm:"not null" json:"city_state_id"`
	CityState   citystate.CityState `gorm:"foreignKey:CityStateID" json:"city_state"`

	Hospitals []hospitalModel.Hospital `gorm:"many2many:hospital_drivers;" json:"hospitals,omitempty"`
}

// HasLocation reports whether the driver has stored coordinates.
func (d *Driver) HasLocation() bool {
	return d.Latitude != nil && d.Longitude != nil
}
