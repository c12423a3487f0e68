// Package uploader orchestrates upload runs against the docsmith service:
// strategy selection, pre-flight limits, chunked batches, and outcome
// reconciliation.
package uploader

import "github.com/docsmith-ai/docsmith/internal/models"

// Endpoint identifies which service route an upload run uses.
type Endpoint string

const (
	EndpointSingle   Endpoint = "/upload/"
	EndpointArchive  Endpoint = "/upload-project/"
	EndpointMultiple Endpoint = "/upload/multiple/"
	EndpointFolder   Endpoint = "/upload/folder/"
)

// Defaults for chunked folder uploads. Chunking bounds request payload
// size and keeps progress reporting linear.
const (
	DefaultChunkThreshold = 20
	DefaultChunkSize      = 5
)

// Strategy is the routing decision for one upload run.
type Strategy struct {
	Endpoint  Endpoint
	Chunked   bool
	ChunkSize int
}

// SelectStrategy picks the endpoint and chunking plan from the selection
// shape alone. Pure function of (mode, fileCount, hasArchive).
func SelectStrategy(mode models.SelectionMode, fileCount int, hasArchive bool) Strategy {
	return selectStrategySized(mode, fileCount, hasArchive, DefaultChunkThreshold, DefaultChunkSize)
}

func selectStrategySized(mode models.SelectionMode, fileCount int, hasArchive bool, threshold, chunkSize int) Strategy {
	// Archives route to the project endpoint no matter how they were picked.
	if hasArchive {
		return Strategy{Endpoint: EndpointArchive}
	}

	switch mode {
	case models.ModeFolder:
		if fileCount > threshold {
			return Strategy{Endpoint: EndpointFolder, Chunked: true, ChunkSize: chunkSize}
		}
		return Strategy{Endpoint: EndpointFolder}
	case models.ModeMultiple:
		return Strategy{Endpoint: EndpointMultiple}
	default:
		return Strategy{Endpoint: EndpointSingle}
	}
}
