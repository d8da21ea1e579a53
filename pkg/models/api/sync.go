package api

import "time"

type SyncState struct {
	Profile        string     `json:"profile"`
	Status         string     `json:"status"`
	LastSyncedDate *time.Time `json:"last_synced_date,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Error          *string    `json:"error,omitempty"`
}
