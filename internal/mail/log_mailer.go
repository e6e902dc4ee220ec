package mail

import (
	"context"
	"fmt"
	"log"
	"time"
)

// LogMailer is the dev/test stand-in for a real provider. Delay and FailSends
// let tests exercise slow-provider and outage paths without env tricks.
type LogMailer struct {
	Delay     time.Duration
	FailSends bool
}

func NewLogMailer() *LogMailer { return &LogMailer{} }

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if m.FailSends {
		return fmt.Errorf("provider down (simulated)")
	}

	log.Printf("mail.sent to=%s subject=%q bytes=%d", msg.To, msg.Subject, len(msg.Body))
	return nil
}
