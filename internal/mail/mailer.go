package mail

import "context"

type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer is the external email collaborator. Sends are synchronous from the
// caller's view; retry policy lives with the caller (the mail worker), not here.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
