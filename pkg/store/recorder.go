package store

import (
	"time"

	"gorm.io/gorm"
)

// SessionRecorder records completed decode sessions into a Store.
type SessionRecorder struct {
	db *gorm.DB
}

// NewSessionRecorder creates a SessionRecorder backed by s.
func NewSessionRecorder(s *Store) *SessionRecorder {
	return &SessionRecorder{db: s.db}
}

// RecordSession inserts one row describing a completed decode session.
func (r *SessionRecorder) RecordSession(profileName string, symbolPairs, renormalizations, bitsChainedBack int64, duration time.Duration) (*DecodeSession, error) {
	session := &DecodeSession{
		ProfileName:      profileName,
		SymbolPairs:      symbolPairs,
		Renormalizations: renormalizations,
		BitsChainedBack:  bitsChainedBack,
		Duration:         duration,
		StartedAt:        time.Now().Add(-duration),
	}
	if err := r.db.Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

// GetRecent retrieves the most recent N recorded sessions.
func (r *SessionRecorder) GetRecent(limit int) ([]DecodeSession, error) {
	var sessions []DecodeSession
	err := r.db.Order("started_at DESC").Limit(limit).Find(&sessions).Error
	return sessions, err
}

// GetByID retrieves a single session by its UUID.
func (r *SessionRecorder) GetByID(id string) (*DecodeSession, error) {
	var session DecodeSession
	if err := r.db.Where("id = ?", id).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// Count returns the total number of recorded sessions.
func (r *SessionRecorder) Count() (int64, error) {
	var count int64
	err := r.db.Model(&DecodeSession{}).Count(&count).Error
	return count, err
}
