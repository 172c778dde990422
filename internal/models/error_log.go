package models

import (
	"time"

	"gorm.io/gorm"
)

// Error kinds recorded by the tracker.
const (
	ErrorKindSample  = "sample"
	ErrorKindPersist = "persist"
	ErrorKindLaunch  = "launch"
	ErrorKindTray    = "tray"
)

type ErrorLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
	Kind      string         `gorm:"not null;index;default:''" json:"kind"`
	ErrorMsg  string         `gorm:"not null" json:"error_msg"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ErrorSummary counts recorded errors per kind.
type ErrorSummary struct {
	Kind  string    `json:"kind"`
	Count int64     `json:"count"`
	Last  time.Time `json:"last"`
}
