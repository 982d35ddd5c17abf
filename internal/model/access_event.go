package model

import (
	"time"

	"github.com/google/uuid"
)

// AccessEvent is a single face match reported by the access-control terminal.
// Rows are append-only: the service never updates or deletes them.
type AccessEvent struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	EventUID   uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"eventUid"`
	PersonName string    `gorm:"size:256;not null" json:"personName"`
	PersonID   string    `gorm:"size:128;index" json:"personId"`
	Confidence float64   `json:"confidence"`
	EventAt    time.Time `gorm:"not null;index" json:"eventAt"`
	Date       string    `gorm:"size:10;not null;index" json:"date"`
	Time       string    `gorm:"size:19;not null" json:"time"`
	LibID      int       `json:"libId"`
	VerifyMode int       `json:"verifyMode"`
	CreatedAt  time.Time `json:"-"`
}
