package julia

// ResizedEvent is emitted whenever grid or view geometry changes.
type ResizedEvent struct {
	Width, Height int
	Length        int
}

// StartedEvent is emitted once per run, before any Iterated event of that run.
type StartedEvent struct {
	Run     uint64
	Workers int
}

// IteratedEvent reports aggregated progress of a run.
type IteratedEvent struct {
	Run           uint64
	Width, Height int
	Length        int
	// Current is the number of points finished by all workers so far.
	Current  int
	Progress float64
	// AnyAlive reports whether any point finished so far in the run has not escaped.
	AnyAlive bool
	// AnyDied reports whether any point in the batch behind this event escaped.
	AnyDied bool
	Faults  int
	Done    bool
}

// CompletedEvent closes a run. Err is nil for a run that covered the whole grid.
type CompletedEvent struct {
	Run    uint64
	Length int
	Faults int
	Err    error
}

// PointFault describes a point whose PointFunc call failed.
type PointFault struct {
	Run    uint64
	Index  int
	X, Y   float64
	Worker int
	Err    error
}

// ListenerFuncs implements Listener with optional callbacks; nil fields are skipped.
type ListenerFuncs struct {
	OnResized   func(ResizedEvent)
	OnStarted   func(StartedEvent)
	OnIterated  func(IteratedEvent)
	OnCompleted func(CompletedEvent)
	OnFault     func(PointFault)
}

func (l ListenerFuncs) Resized(e ResizedEvent) {
	if l.OnResized != nil {
		l.OnResized(e)
	}
}

func (l ListenerFuncs) Started(e StartedEvent) {
	if l.OnStarted != nil {
		l.OnStarted(e)
	}
}

func (l ListenerFuncs) Iterated(e IteratedEvent) {
	if l.OnIterated != nil {
		l.OnIterated(e)
	}
}

func (l ListenerFuncs) Completed(e CompletedEvent) {
	if l.OnCompleted != nil {
		l.OnCompleted(e)
	}
}

func (l ListenerFuncs) PointFault(f PointFault) {
	if l.OnFault != nil {
		l.OnFault(f)
	}
}

var (
	_ Listener      = ListenerFuncs{}
	_ FaultListener = ListenerFuncs{}
)
