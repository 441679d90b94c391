package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherPublish(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got []Event

	d.Subscribe(EventIssueCreated, func(ctx context.Context, event Event) error {
		got = append(got, event)
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventIssueCreated, IssueID: "i1"})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(got) != 1 || got[0].IssueID != "i1" {
		t.Fatalf("received = %+v", got)
	}

	// unrelated event types do not reach the handler
	if err := d.Publish(context.Background(), Event{Type: EventIssueDeleted}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("handler saw %d events, want 1", len(got))
	}
}

func TestDispatcherContinuesPastHandlerError(t *testing.T) {
	d := NewInMemoryDispatcher()
	var reached bool

	d.Subscribe(EventCommentAdded, func(ctx context.Context, event Event) error {
		return errors.New("boom")
	})
	d.Subscribe(EventCommentAdded, func(ctx context.Context, event Event) error {
		reached = true
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: EventCommentAdded}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !reached {
		t.Fatal("second handler not invoked after first failed")
	}
}

func TestDispatcherNoSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	if err := d.Publish(context.Background(), Event{Type: EventIssueAssigned}); err != nil {
		t.Fatalf("publish without subscribers: %v", err)
	}
}
