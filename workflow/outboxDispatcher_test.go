package workflow

import (
	"testing"
	"time"
)

func TestDispatcherBackoff(t *testing.T) {
	d := NewOutboxDispatcher(nil, nil)
	d.InitialBackoff = 5 * time.Second
	d.MaxBackoff = 10 * time.Minute

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 5 * time.Second},
		{1, 5 * time.Second},
		{2, 10 * time.Second},
		{3, 20 * time.Second},
		{5, 80 * time.Second},
		{9, 10 * time.Minute},
		{50, 10 * time.Minute},
	}
	for _, tc := range cases {
		if got := d.backoff(tc.attempt); got != tc.want {
			t.Errorf("backoff(%d) = %s, want %s", tc.attempt, got, tc.want)
		}
	}
}

func TestDispatchOnceNilDB(t *testing.T) {
	d := NewOutboxDispatcher(nil, nil)
	// Must not panic when the DB is not connected yet.
	d.dispatchOnce(nil)
}
