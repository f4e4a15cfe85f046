package email

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"
)

const defaultTimeout = 10 * time.Second

// Config holds the SMTP account used for outgoing mail. Timeout bounds a whole
// send, from dial to QUIT.
type Config struct {
	Host     string
	Port     string
	Sender   string
	Password string
	Timeout  time.Duration
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender sends plain text emails through one SMTP account.
type SMTPSender struct {
	cfg  Config
	send sendFunc
}

func NewSMTPSender(cfg Config) *SMTPSender {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &SMTPSender{cfg: cfg, send: sendWithDeadline(cfg.Timeout)}
}

// SendEmail sends a plain text email using SMTP.
func (s *SMTPSender) SendEmail(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.cfg.Sender, s.cfg.Password, s.cfg.Host)

	msg := []byte("From: " + s.cfg.Sender + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body + "\r\n")

	address := net.JoinHostPort(s.cfg.Host, s.cfg.Port)

	if err := s.send(address, auth, s.cfg.Sender, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// sendWithDeadline does what smtp.SendMail does, on a connection that gives up
// after timeout.
func sendWithDeadline(timeout time.Duration) sendFunc {
	return func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		conn, err := net.DialTimeout("tcp", addr, timeout)
		if err != nil {
			return err
		}
		if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
			conn.Close()
			return err
		}

		host, _, _ := net.SplitHostPort(addr)
		c, err := smtp.NewClient(conn, host)
		if err != nil {
			conn.Close()
			return err
		}
		defer c.Close()

		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
				return err
			}
		}
		if a != nil {
			if ok, _ := c.Extension("AUTH"); ok {
				if err := c.Auth(a); err != nil {
					return err
				}
			}
		}
		if err := c.Mail(from); err != nil {
			return err
		}
		for _, rcpt := range to {
			if err := c.Rcpt(rcpt); err != nil {
				return err
			}
		}
		w, err := c.Data()
		if err != nil {
			return err
		}
		if _, err := w.Write(msg); err != nil {
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
		return c.Quit()
	}
}
