package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/nats-io/nats.go"

	"github.com/Ad0t/PMIS-Allocation/internal/adapters/mq/notify"
	"github.com/Ad0t/PMIS-Allocation/internal/domain/model"
	"github.com/Ad0t/PMIS-Allocation/pkg/logger"
)

// Watch prints every published-result event on subject until ctx ends.
func Watch(ctx context.Context, conn *nats.Conn, subject string, out io.Writer) error {
	log := logger.Get().Named("watch")
	events := make(chan model.PublishedEvent, 64)

	sub, err := notify.Subscribe(conn, subject,
		func(ev model.PublishedEvent) {
			select {
			case events <- ev:
			default:
				log.Warn(ctx, "dropping event, printer is behind", logger.String("internship_id", ev.InternshipID))
			}
		},
		func(err error) { log.Warn(ctx, "undecodable event", logger.Error(err)) },
	)
	if err != nil {
		return err
	}
	defer func() { _ = sub.Unsubscribe() }()

	log.Info(ctx, "watching for published results", logger.String("subject", sub.Subject))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if err := printEvent(out, ev); err != nil {
				return err
			}
		}
	}
}

func printEvent(w io.Writer, ev model.PublishedEvent) error {
	_, err := fmt.Fprintf(w, "%s  internship=%s version=%d run=%s strategy=%s entries=%d shortlisted=%d\n",
		ev.PublishedAt.Format("2006-01-02T15:04:05Z07:00"),
		ev.InternshipID, ev.Version, ev.RunID, ev.Strategy, ev.Entries, ev.Shortlisted)
	return err
}
