package julia

import "errors"

var (
	// ErrInvalidConfig is returned by constructors and setters for out-of-range parameters.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrRunning is returned when Start or a setter is called during a run.
	ErrRunning = errors.New("engine is running")

	// ErrWorkerFault ends a run whose worker terminated abnormally.
	ErrWorkerFault = errors.New("worker fault")

	// ErrPointFault wraps errors and panics raised by a PointFunc for one point.
	ErrPointFault = errors.New("point fault")
)

// FaultMetric is written to the result buffer for points whose PointFunc failed.
const FaultMetric = -1.0
