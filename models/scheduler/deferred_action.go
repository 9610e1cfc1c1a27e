package scheduler

import (
	"time"
)

// DeferredAction is a durable one-shot timer entry. The row exists while the
// action is armed and is deleted when it fires or is cancelled, so armed
// deadlines survive a process restart.
type DeferredAction struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ActionID  string    `gorm:"type:varchar(100);not null;unique" json:"action_id"`
	RequestID uint      `gorm:"not null" json:"request_id"`
	Reason    string    `gorm:"type:varchar(255);not null" json:"reason"`
	FireAt    time.Time `gorm:"not null;index" json:"fire_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName sets the table name for the DeferredAction model
func (DeferredAction) TableName() string {
	return "deferred_actions"
}
