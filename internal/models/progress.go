package models

// ProgressState is a point-in-time snapshot of a running generation,
// suitable for rendering without further computation.
type ProgressState struct {
	StepIndex             int    // index into the fixed step sequence
	StepLabel             string // human label for the current step
	ElapsedSeconds        int
	EstimatedTotalSeconds int
	PercentComplete       int // capped below 100 until completion is confirmed
}
