package store

import "time"

type SyncRecord struct {
	Profile        string
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	LastSyncedDate *time.Time
	Error          *string
}

type SyncIdentity struct {
	Profile string
}
