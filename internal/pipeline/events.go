package pipeline

import "time"

// NoticeTTL is how long a transient banner stays on screen.
const NoticeTTL = 5 * time.Second

// Event types pushed to connected clients while a workflow runs.
const (
	EventStage  = "stage"  // a stage started or finished
	EventNotice = "notice" // transient advisory banner
	EventCycle  = "cycle"  // one full run completed (drives the UI animation)
)

// Event is one structured progress update.
type Event struct {
	Type      string        `json:"type"`
	UserID    string        `json:"userId,omitempty"`
	Stage     string        `json:"stage,omitempty"`
	State     string        `json:"state,omitempty"`
	Detail    string        `json:"detail,omitempty"`
	TTL       time.Duration `json:"ttl,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// EventSink receives workflow events. Implementations must not block.
type EventSink interface {
	Publish(Event)
}

// NopSink drops every event.
type NopSink struct{}

func (NopSink) Publish(Event) {}

func stageEvent(userID, stage, state string) Event {
	return Event{Type: EventStage, UserID: userID, Stage: stage, State: state, Timestamp: time.Now().UTC()}
}

func noticeEvent(userID, detail string) Event {
	return Event{Type: EventNotice, UserID: userID, Detail: detail, TTL: NoticeTTL, Timestamp: time.Now().UTC()}
}

func cycleEvent(userID string) Event {
	return Event{Type: EventCycle, UserID: userID, Timestamp: time.Now().UTC()}
}
