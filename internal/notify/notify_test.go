package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeChannel struct {
	calls int
	err   error
}

func (c *fakeChannel) Notify(context.Context, string, string, string) error {
	c.calls++
	return c.err
}

func TestFanout_DeliversToAllChannels(t *testing.T) {
	t.Parallel()

	a := &fakeChannel{}
	b := &fakeChannel{}

	if err := (Fanout{a, b}).Notify(context.Background(), "u", "t", "v"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Errorf("calls = %d, %d; want 1, 1", a.calls, b.calls)
	}
}

func TestFanout_FailureDoesNotStopOthers(t *testing.T) {
	t.Parallel()

	a := &fakeChannel{err: errors.New("channel a down")}
	b := &fakeChannel{}

	err := (Fanout{a, b}).Notify(context.Background(), "u", "t", "v")
	if err == nil {
		t.Fatal("expected the channel failure to surface")
	}
	if !strings.Contains(err.Error(), "channel a down") {
		t.Errorf("error = %q, want to contain the channel failure", err)
	}
	if b.calls != 1 {
		t.Errorf("second channel calls = %d, want 1", b.calls)
	}
}

func TestFanout_EmptyIsNoOp(t *testing.T) {
	t.Parallel()

	if err := (Fanout{}).Notify(context.Background(), "u", "t", "v"); err != nil {
		t.Fatalf("empty fanout: %v", err)
	}
}
