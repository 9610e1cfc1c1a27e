package hospital

import (
	"time"

	ambulanceModel "lifeline-backend/models/ambulance"
	"lifeline-backend/models/citystate"
)

// Hospital represents a registered hospital with a geocoded address.
type Hospital struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null;unique" json:"name"`
	Email     string    `gorm:"type:varchar(100);not null;unique" json:"email"`
	Phone     string    `gorm:"type:varchar(15);not null;unique" json:"phone"`
	Password  string    `gorm:"type:varchar(200);not null" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Inline address fields
	Street    string   `gorm:"type:varchar(255)" json:"street"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	CityStateID uint                `gorm:"not null" json:"city_state_id"`
	CityState   citystate.CityState `gorm:"foreignKey:CityStateID" json:"city_state"`

	Ambulances []ambulanceModel.Ambulance `gorm:"foreignKey:HospitalID" json:"ambulances,omitempty"`
}

// HasLocation reports whether the hospital has stored coordinates.
func (h *Hospital) HasLocation() bool {
	return h.Latitude != nil && h.Longitude != nil
}
