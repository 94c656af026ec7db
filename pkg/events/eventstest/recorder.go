// Package eventstest provides an in-memory events.Publisher for tests.
package eventstest

import (
	"context"
	"sync"

	"github.com/NunnaRupaSri/terraform-sample/pkg/events"
)

type Published struct {
	Topic string
	Key   string
	Event events.Event
}

type Recorder struct {
	mu   sync.Mutex
	Err  error
	sent []Published
}

func (r *Recorder) PublishEvent(_ context.Context, topic, key string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	ev, _ := event.(events.Event)
	r.sent = append(r.sent, Published{Topic: topic, Key: key, Event: ev})
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Published(nil), r.sent...)
}

// Types lists event types in publish order.
func (r *Recorder) Types() []string {
	var out []string
	for _, p := range r.Events() {
		out = append(out, p.Event.Type)
	}
	return out
}
