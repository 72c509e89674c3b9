package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/alexanderramin/slaguard/internal/notify"
)

// RecordingSink keeps every notification it receives.
type RecordingSink struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (s *RecordingSink) Send(_ context.Context, n notify.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	return nil
}

func (s *RecordingSink) Sent() []notify.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]notify.Notification, len(s.sent))
	copy(out, s.sent)
	return out
}

// OfKind filters the recorded notifications.
func (s *RecordingSink) OfKind(k notify.Kind) []notify.Notification {
	var out []notify.Notification
	for _, n := range s.Sent() {
		if n.Kind == k {
			out = append(out, n)
		}
	}
	return out
}

// ErrSinkDown is returned by FailingSink.
var ErrSinkDown = errors.New("sink down")

// FailingSink rejects every notification.
type FailingSink struct{}

func (FailingSink) Send(context.Context, notify.Notification) error { return ErrSinkDown }
