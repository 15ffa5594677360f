package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DecodeSession represents one completed decode run: how much work it did
// and how long it took, for later auditing or capacity planning.
type DecodeSession struct {
	ID               string        `gorm:"primarykey" json:"id"`
	ProfileName      string        `gorm:"index;size:64" json:"profile_name"`
	SymbolPairs      int64         `gorm:"not null" json:"symbol_pairs"`
	Renormalizations int64         `gorm:"not null" json:"renormalizations"`
	BitsChainedBack  int64         `gorm:"not null" json:"bits_chained_back"`
	Duration         time.Duration `gorm:"not null" json:"duration_ns"`
	StartedAt        time.Time     `gorm:"index;not null" json:"started_at"`
	CreatedAt        time.Time     `json:"created_at"`
}

// TableName specifies the table name for DecodeSession.
func (DecodeSession) TableName() string {
	return "decode_sessions"
}

// BeforeCreate assigns a session ID and timestamps if the caller left them
// zero.
func (d *DecodeSession) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	if d.StartedAt.IsZero() {
		d.StartedAt = time.Now()
	}
	return nil
}
