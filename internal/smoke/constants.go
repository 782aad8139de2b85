package smoke

import "time"

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	DefaultSettle        = 2 * time.Second
	PercentageMultiplier = 100
	pollInterval         = 200 * time.Millisecond
)

// Value ceilings for form fields without an upper bound.
const (
	openFieldSpan = 3000
)

var tasks = []string{"satisfaction", "price"}
