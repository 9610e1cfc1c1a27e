package ambulance

import (
	"time"
)

// AmbulanceStatus represents the operational state of an ambulance.
type AmbulanceStatus string

const (
	StatusAvailable   AmbulanceStatus = "available"
	StatusBusy        AmbulanceStatus = "busy"
	StatusMaintenance AmbulanceStatus = "maintenance"
)

func (s AmbulanceStatus) IsValid() bool {
	switch s {
	case StatusAvailable, StatusBusy, StatusMaintenance:
		return true
	default:
		return false
	}
}

// Ambulance represents a vehicle owned by a hospital.
type Ambulance struct {
	ID            uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	VehicleNumber string          `gorm:"type:varchar(20);not null;unique" json:"vehicle_number"`
	VehicleType   string          `gorm:"type:varchar(50);not null" json:"vehicle_type"`
	Status        AmbulanceStatus `gorm:"type:varchar(20);not null;default:available" json:"status"`
	HospitalID    uint            `gorm:"not null;index" json:"hospital_id"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}
