package domain

import "time"

type SyncStatus string

const (
	SyncStatusPending   SyncStatus = "pending"
	SyncStatusFinished  SyncStatus = "finished"
	SyncStatusFailed    SyncStatus = "failed"
	SyncStatusCancelled SyncStatus = "cancelled"
)

// SyncState tracks the metric import of one warehouse profile. LastSyncedDate
// is the service-date high-water mark already copied into the local store.
type SyncState struct {
	Profile        string
	Status         SyncStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
	LastSyncedDate time.Time
	Error          *string
}
