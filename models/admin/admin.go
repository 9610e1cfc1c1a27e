package admin

import (
	"time"
)

// Admin represents a platform administrator.
type Admin struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null;unique" json:"name"`
	Email     string    `gorm:"type:varchar(100);not null;unique" json:"email"`
	Phone     string    `gorm:"type:varchar(15);not null;unique" json:"phone"`
	Password  string    `gorm:"type:varchar(200);not null" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
