package mail

import "gopkg.in/gomail.v2"

// Message is one outbound e-mail.
type Message struct {
	To      string
	Subject string
	Body    string
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string

	dialer dialer
	// inflight holds one slot per DialAndSend still running, including
	// sends whose caller already gave up.
	inflight chan struct{}
}
