package probe

import "time"

// Worker configuration constants.
const (
	workerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	pollInterval         = 200 * time.Millisecond
	percentageMultiplier = 100
	scoreTolerance       = 0.005
)
