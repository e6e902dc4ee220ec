package jobs

type JobType string

const (
	// Sent after signup. Best effort, delivered by the mail worker.
	JobWelcomeEmail JobType = "mail.welcome"

	// Security notice sent after any successful password mutation.
	JobPasswordChangedEmail JobType = "mail.password_changed"
)

func (t JobType) IsValid() bool {
	switch t {
	case JobWelcomeEmail, JobPasswordChangedEmail:
		return true
	default:
		return false
	}
}
