// Package stream carries engine events to websocket watchers as JSON messages.
package stream

import julia "github.com/marben/juliaset"

// Message types.
const (
	TypeResized   = "resized"
	TypeStarted   = "started"
	TypeIterated  = "iterated"
	TypeCompleted = "completed"
	TypeFault     = "fault"
)

// Message is the wire form of one engine event.
type Message struct {
	Type     string  `json:"type"`
	Run      uint64  `json:"run,omitempty"`
	Width    int     `json:"width,omitempty"`
	Height   int     `json:"height,omitempty"`
	Length   int     `json:"length,omitempty"`
	Workers  int     `json:"workers,omitempty"`
	Current  int     `json:"current,omitempty"`
	Progress float64 `json:"progress,omitempty"`
	AnyAlive bool    `json:"anyAlive,omitempty"`
	AnyDied  bool    `json:"anyDied,omitempty"`
	Done     bool    `json:"done,omitempty"`
	Faults   int     `json:"faults,omitempty"`
	Index    int     `json:"index,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// Final reports whether m ends a run.
func (m Message) Final() bool {
	return m.Type == TypeCompleted
}

func resized(ev julia.ResizedEvent) Message {
	return Message{Type: TypeResized, Width: ev.Width, Height: ev.Height, Length: ev.Length}
}

func started(ev julia.StartedEvent) Message {
	return Message{Type: TypeStarted, Run: ev.Run, Workers: ev.Workers}
}

func iterated(ev julia.IteratedEvent) Message {
	return Message{
		Type:     TypeIterated,
		Run:      ev.Run,
		Width:    ev.Width,
		Height:   ev.Height,
		Length:   ev.Length,
		Current:  ev.Current,
		Progress: ev.Progress,
		AnyAlive: ev.AnyAlive,
		AnyDied:  ev.AnyDied,
		Done:     ev.Done,
		Faults:   ev.Faults,
	}
}

func completed(ev julia.CompletedEvent) Message {
	m := Message{Type: TypeCompleted, Run: ev.Run, Length: ev.Length, Faults: ev.Faults}
	if ev.Err != nil {
		m.Error = ev.Err.Error()
	}
	return m
}

func fault(f julia.PointFault) Message {
	m := Message{Type: TypeFault, Run: f.Run, Index: f.Index}
	if f.Err != nil {
		m.Error = f.Err.Error()
	}
	return m
}
