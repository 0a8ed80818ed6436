package mail

import (
	"fmt"
	"time"
)

// Message is a rendered email ready for a Mailer.
type Message struct {
	Subject  string
	HTMLBody string
	TextBody string
}

func OTPVerification(fullName, code string) Message {
	return Message{
		Subject: "Verify Your Email - Neighbourhood Connect",
		HTMLBody: fmt.Sprintf(`<html><body>
<h2>Hello %s!</h2>
<p>Thank you for registering with Neighbourhood Connect. To complete your registration, please verify your email address using the code below:</p>
<p style="font-size:32px;font-weight:bold;letter-spacing:5px">%s</p>
<p><strong>This code will expire in 15 minutes</strong></p>
<p>If you didn't create an account with us, please ignore this email.</p>
<p>Best regards,<br>The Neighbourhood Connect Team</p>
</body></html>`, fullName, code),
		TextBody: fmt.Sprintf("Hello %s!\n\nThank you for registering with Neighbourhood Connect. Your verification code is: %s\n\nThis code will expire in 15 minutes.\n\nIf you didn't create an account with us, please ignore this email.\n\nBest regards,\nThe Neighbourhood Connect Team", fullName, code),
	}
}

func PasswordReset(fullName, code string) Message {
	return Message{
		Subject: "Password Reset - Neighbourhood Connect",
		HTMLBody: fmt.Sprintf(`<html><body>
<h2>Hello %s!</h2>
<p>We received a request to reset your password for your Neighbourhood Connect account. Use the code below to reset your password:</p>
<p style="font-size:32px;font-weight:bold;letter-spacing:5px">%s</p>
<p><strong>This code will expire in 15 minutes</strong></p>
<p><strong>Security Notice:</strong> If you didn't request this password reset, please ignore this email and your password will remain unchanged.</p>
<p>Best regards,<br>The Neighbourhood Connect Team</p>
</body></html>`, fullName, code),
		TextBody: fmt.Sprintf("Hello %s!\n\nWe received a request to reset your password for your Neighbourhood Connect account. Your reset code is: %s\n\nThis code will expire in 15 minutes.\n\nIf you didn't request this password reset, please ignore this email.\n\nBest regards,\nThe Neighbourhood Connect Team", fullName, code),
	}
}

func EventAnnouncement(fullName, title string, date time.Time, location string) Message {
	when := date.Format("January 2, 2006 3:04 PM")
	return Message{
		Subject: fmt.Sprintf("New Event: %s - Neighbourhood Connect", title),
		HTMLBody: fmt.Sprintf(`<html><body>
<h2>Hello %s!</h2>
<p>A new event has been announced in your neighbourhood:</p>
<p><strong>%s</strong><br>%s<br>%s</p>
<p>Log in to Neighbourhood Connect to RSVP.</p>
<p>Best regards,<br>The Neighbourhood Connect Team</p>
</body></html>`, fullName, title, when, location),
		TextBody: fmt.Sprintf("Hello %s!\n\nA new event has been announced in your neighbourhood:\n\n%s\n%s\n%s\n\nLog in to Neighbourhood Connect to RSVP.\n\nBest regards,\nThe Neighbourhood Connect Team", fullName, title, when, location),
	}
}
