package connection

import (
	"time"

	driverModel "lifeline-backend/models/driver"
	hospitalModel "lifeline-backend/models/hospital"
)

// Status is the lifecycle state of a connection request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	default:
		return false
	}
}

// IsResolution reports whether s is a valid terminal decision.
func (s Status) IsResolution() bool {
	return s == StatusAccepted || s == StatusRejected
}

// SenderType identifies which side initiated the connection request.
type SenderType string

const (
	SenderDriver   SenderType = "driver"
	SenderHospital SenderType = "hospital"
)

func (st SenderType) IsValid() bool {
	return st == SenderDriver || st == SenderHospital
}

// ConnectRequest is a pending/accepted/rejected link proposal between one
// driver and one hospital. At most one pending row may exist per pair.
type ConnectRequest struct {
	ID         uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Status     Status     `gorm:"type:varchar(20);not null;default:pending" json:"status"`
	SenderType SenderType `gorm:"type:varchar(10);not null" json:"sender_type"`

	DriverID uint               `gorm:"not null;index" json:"driver_id"`
	Driver   driverModel.Driver `gorm:"foreignKey:DriverID" json:"driver"`

	HospitalID uint                   `gorm:"not null;index" json:"hospital_id"`
	Hospital   hospitalModel.Hospital `gorm:"foreignKey:HospitalID" json:"hospital"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName sets the table name for the ConnectRequest model
func (ConnectRequest) TableName() string {
	return "connect_requests"
}
