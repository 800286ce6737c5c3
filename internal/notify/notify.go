// Package notify broadcasts day-record changes so that other sessions can
// re-fetch and re-materialize the day. Events carry no diff; a subscriber
// always reloads the whole day.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Reasons attached to events.
const (
	ReasonDrop   = "drop"
	ReasonMarker = "marker"
	ReasonGroup  = "group"
	ReasonMoveIn = "move_in"
)

// Event says that one day of a trip was rewritten.
type Event struct {
	TripID    uuid.UUID `json:"tripId"`
	DayID     uuid.UUID `json:"dayId"`
	DayNumber int       `json:"dayNumber"`
	Reason    string    `json:"reason"`
	At        time.Time `json:"at"`
}

// Publisher sends day-change events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Subscriber streams a trip's day-change events until ctx is done or the
// returned stop function is called. The channel is closed on stop.
type Subscriber interface {
	Subscribe(ctx context.Context, tripID uuid.UUID) (<-chan Event, func(), error)
}

// Bus is both ends of a notification transport.
type Bus interface {
	Publisher
	Subscriber
}

// Channel is the pub/sub channel name for a trip.
func Channel(tripID uuid.UUID) string {
	return "dayplanner:trip:" + tripID.String()
}

// Nop drops every event and never delivers any.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

func (Nop) Subscribe(ctx context.Context, _ uuid.UUID) (<-chan Event, func(), error) {
	ch := make(chan Event)
	var once sync.Once
	stop := func() { once.Do(func() { close(ch) }) }
	go func() {
		<-ctx.Done()
		stop()
	}()
	return ch, stop, nil
}

// subscriberBuffer is how many events a slow subscriber may lag behind
// before further events are dropped for it.
const subscriberBuffer = 16

// Local fans events out to subscribers in the same process. It is used when
// no Redis server is configured.
type Local struct {
	mu   sync.Mutex
	subs map[uuid.UUID]map[*localSub]struct{}
}

type localSub struct {
	ch   chan Event
	once sync.Once
}

// NewLocal returns an empty in-process bus.
func NewLocal() *Local {
	return &Local{subs: make(map[uuid.UUID]map[*localSub]struct{})}
}

// Publish delivers e to every current subscriber of its trip. A subscriber
// whose buffer is full misses the event; it will catch up on the next one.
func (l *Local) Publish(_ context.Context, e Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for s := range l.subs[e.TripID] {
		select {
		case s.ch <- e:
		default:
		}
	}
	return nil
}

func (l *Local) Subscribe(ctx context.Context, tripID uuid.UUID) (<-chan Event, func(), error) {
	s := &localSub{ch: make(chan Event, subscriberBuffer)}

	l.mu.Lock()
	if l.subs[tripID] == nil {
		l.subs[tripID] = make(map[*localSub]struct{})
	}
	l.subs[tripID][s] = struct{}{}
	l.mu.Unlock()

	stop := func() {
		s.once.Do(func() {
			l.mu.Lock()
			delete(l.subs[tripID], s)
			if len(l.subs[tripID]) == 0 {
				delete(l.subs, tripID)
			}
			close(s.ch)
			l.mu.Unlock()
		})
	}
	go func() {
		<-ctx.Done()
		stop()
	}()
	return s.ch, stop, nil
}

var (
	_ Bus = Nop{}
	_ Bus = (*Local)(nil)
)
