package probe

import "time"

// HTTP status code constants.
const (
	StatusOK = 200
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Report invariants checked over the wire.
const (
	ClusterWindow    = 20 * time.Minute
	ClusterMinSize   = 3
	MaxBestHours     = 3
	ReadyOffset      = 20 * time.Minute
	PercentageFactor = 100
)
