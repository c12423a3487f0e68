package models

import "time"

// Generation is a locally cached record of one documentation run,
// kept so history and export work without re-contacting the service.
type Generation struct {
	ID             string // ULID
	RemoteID       string // server-side identifier, empty when unknown
	Title          string // display name, usually the file or folder uploaded
	Mode           SelectionMode
	Status         OutcomeStatus
	GeneratorLabel string
	FileCount      int
	ProcessedCount int
	Documentation  string
	CreatedAt      time.Time
}
