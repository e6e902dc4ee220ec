package mail

import "fmt"

func PasswordResetMessage(to, resetURL string) Message {
	return Message{
		To:      to,
		Subject: "Your password reset token (valid for 10 min)",
		Body: fmt.Sprintf(
			"Forgot your password? Submit a request with your new password and confirmPassword to: %s\n"+
				"If you didn't forget your password, please ignore this email.",
			resetURL,
		),
	}
}

func WelcomeMessage(to, name string) Message {
	return Message{
		To:      to,
		Subject: "Welcome to Jobhub",
		Body:    fmt.Sprintf("Hi %s,\n\nYour account is ready. Happy hunting!", name),
	}
}

func PasswordChangedMessage(to, name string) Message {
	return Message{
		To:      to,
		Subject: "Your password was changed",
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour password was just changed. If this wasn't you, reset your password immediately.",
			name,
		),
	}
}
