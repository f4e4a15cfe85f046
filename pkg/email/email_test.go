package email

import (
	"errors"
	"net"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendEmail(t *testing.T) {
	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
	)
	sender := NewSMTPSender(Config{Host: "smtp.example.com", Port: "587", Sender: "noreply@example.com"})
	sender.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		assert.Equal(t, "noreply@example.com", from)
		return nil
	}

	require.NoError(t, sender.SendEmail("ana@example.com", "Hello", "Body text"))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"ana@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: Hello\r\n")
	assert.Contains(t, gotMsg, "\r\n\r\nBody text\r\n")
}

func TestSendEmailWrapsError(t *testing.T) {
	boom := errors.New("connection refused")
	sender := NewSMTPSender(Config{Host: "smtp.example.com", Port: "587"})
	sender.send = func(string, smtp.Auth, string, []string, []byte) error { return boom }

	err := sender.SendEmail("ana@example.com", "Hello", "Body")
	assert.ErrorIs(t, err, boom)
}

func TestSendEmailGivesUpOnSilentServer(t *testing.T) {
	// Accepts connections but never sends the SMTP greeting.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
		}
	}()

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	sender := NewSMTPSender(Config{Host: host, Port: port, Sender: "noreply@example.com", Timeout: 100 * time.Millisecond})

	start := time.Now()
	err = sender.SendEmail("ana@example.com", "Hello", "Body")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}
