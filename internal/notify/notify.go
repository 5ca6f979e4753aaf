// Package notify delivers out-of-band messages to the site operator.
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

type sendFunc func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier mails the operator address from itself. Each message is
// bounded by timeout, from dial to QUIT.
type SMTPNotifier struct {
	addr     string
	host     string
	address  string
	password string
	timeout  time.Duration
	send     sendFunc
}

func NewSMTPNotifier(host, port, address, password string, timeout time.Duration) *SMTPNotifier {
	return &SMTPNotifier{
		addr:     net.JoinHostPort(host, port),
		host:     host,
		address:  address,
		password: password,
		timeout:  timeout,
		send:     sendMail,
	}
}

func (n *SMTPNotifier) Notify(ctx context.Context, subject, body string) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	msg := strings.Join([]string{
		"From: " + n.address,
		"To: " + n.address,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		body,
	}, "\r\n")

	auth := smtp.PlainAuth("", n.address, n.password, n.host)

	done := make(chan error, 1)
	go func() {
		done <- n.send(ctx, n.addr, auth, n.address, []string{n.address}, []byte(msg))
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// sendMail is smtp.SendMail with the connection deadline taken from ctx.
func sendMail(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return err
		}
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	c, err := smtp.NewClient(conn, host)
	if err != nil {
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

// LogNotifier writes notifications to the log. Used when no mail account is configured.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, subject, body string) error {
	n.log.Warn("operator notification", zap.String("subject", subject), zap.String("body", body))
	return nil
}
