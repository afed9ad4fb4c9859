package model

import "time"

// BackupInfo describes one backup file on disk.
type BackupInfo struct {
	Name      string    `json:"name"`
	SizeBytes int64     `json:"sizeBytes"`
	CreatedAt time.Time `json:"createdAt"`
	Records   int       `json:"records"`
}
