// Package notify announces newly published allocation results to
// subscribers over NATS.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Ad0t/PMIS-Allocation/internal/domain/model"
	"github.com/Ad0t/PMIS-Allocation/pkg/metrics"
)

// DefaultSubject is the subject results are announced on.
const DefaultSubject = "pmis.allocation.published"

// ErrNoConnection means the notifier has nothing to publish to.
var ErrNoConnection = errors.New("notifier has no connection")

// Notifier announces a published result.
type Notifier interface {
	Notify(ctx context.Context, ev model.PublishedEvent) error
}

// Publisher is the subset of *nats.Conn the notifier needs.
type Publisher interface {
	Publish(subj string, data []byte) error
}

// NATSNotifier publishes events as JSON on one subject.
type NATSNotifier struct {
	conn    Publisher
	subject string
}

// NewNATS creates a notifier. An empty subject uses DefaultSubject.
func NewNATS(conn Publisher, subject string) *NATSNotifier {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSNotifier{conn: conn, subject: subject}
}

// Subject returns the subject events go to.
func (n *NATSNotifier) Subject() string { return n.subject }

// Notify implements Notifier.
func (n *NATSNotifier) Notify(ctx context.Context, ev model.PublishedEvent) error {
	if n.conn == nil {
		return ErrNoConnection
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := n.conn.Publish(n.subject, payload); err != nil {
		metrics.RecordNotification("error")
		return fmt.Errorf("publish to %s: %w", n.subject, err)
	}
	metrics.RecordNotification("ok")
	return nil
}

// Nop drops every event.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(context.Context, model.PublishedEvent) error { return nil }

// Connect dials a NATS server.
func Connect(url, name string) (*nats.Conn, error) {
	if url == "" {
		return nil, fmt.Errorf("nats url must not be empty")
	}
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return conn, nil
}

// Decode parses an event payload.
func Decode(data []byte) (model.PublishedEvent, error) {
	var ev model.PublishedEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return model.PublishedEvent{}, fmt.Errorf("decode event: %w", err)
	}
	return ev, nil
}

// Subscribe delivers decoded events on subject to fn until the returned
// subscription is drained. Undecodable messages are passed to onErr.
func Subscribe(conn *nats.Conn, subject string, fn func(model.PublishedEvent), onErr func(error)) (*nats.Subscription, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	sub, err := conn.Subscribe(subject, func(msg *nats.Msg) {
		ev, err := Decode(msg.Data)
		if err != nil {
			if onErr != nil {
				onErr(err)
			}
			return
		}
		fn(ev)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", subject, err)
	}
	return sub, nil
}

// EventFor summarises a result for subscribers.
func EventFor(r model.AllocationResult, at time.Time) model.PublishedEvent {
	return model.PublishedEvent{
		InternshipID: r.InternshipID,
		Version:      r.Version,
		RunID:        r.RunID,
		Strategy:     r.Strategy,
		Entries:      len(r.Entries),
		Shortlisted:  len(r.Shortlist()),
		PublishedAt:  at.UTC(),
	}
}
