package models

// SyncResult partitions the submitted UUIDs into accepted and rejected.
type SyncResult struct {
	OkUUIDs []string `json:"ok_uuids"`
	NgUUIDs []string `json:"ng_uuids"`
}

// SyncReport describes one sync round.
type SyncReport struct {
	// Skipped is set when another round was already in flight.
	Skipped       bool
	NothingToSync bool
	Submitted     int
	Accepted      int
	Rejected      int
	// Superseded counts accepted records left pending because they were
	// edited or deleted locally while the push was in flight.
	Superseded int
	// Deferred counts pending records left for the next round because the
	// batch was full.
	Deferred int
}

// RemoteExpense is a row of the server's expense listing.
type RemoteExpense struct {
	ID         *int64  `json:"id,omitempty"`
	ClientUUID *string `json:"client_uuid,omitempty"`
	Date       string  `json:"date"`
	Amount     int64   `json:"amount"`
	Category   string  `json:"category"`
	Note       *string `json:"note,omitempty"`
	PaidBy     *PaidBy `json:"paid_by,omitempty"`
}

// PullReport describes one merge of server history.
type PullReport struct {
	Pages          int
	Fetched        int
	Merged         int
	SkippedPending int
	SkippedNoUUID  int
	SkippedInvalid int
}

// MigrationState records a completed one-time data migration.
type MigrationState struct {
	Version     int    `json:"version"`
	CompletedAt string `json:"completed_at"`
}
