package mail

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/evan/item-vault/internal/config"
)

type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers a single message. The SMTP implementation is used when
// email is configured; LogMailer stands in everywhere else.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.EmailsFrom,
		fromName: cfg.EmailsFromName,
	}
}

func (m *SMTPMailer) Send(_ context.Context, msg Message) error {
	addr := fmt.Sprintf("%s:%d", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", m.fromName, m.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)

	return smtp.SendMail(addr, auth, m.from, []string{msg.To}, []byte(b.String()))
}

// LogMailer writes outgoing mail to the process log instead of sending it.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	log.Printf("INFO [mail.LogMailer] to=%s subject=%q (delivery disabled)", msg.To, msg.Subject)
	return nil
}
