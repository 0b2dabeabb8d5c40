package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"
)

// SMTPConfig addresses the relay
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier emails the link as a plain text and HTML message
type SMTPNotifier struct {
	cfg  SMTPConfig
	send sendFunc
	now  func() time.Time
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, send: smtp.SendMail, now: time.Now}
}

var htmlBody = template.Must(template.New("magic-link").Parse(`<!doctype html>
<html>
  <body style="font-family: sans-serif">
    <h2>Sign in to Quick-Post</h2>
    <p>Click the button below to sign in. The link expires in {{.Minutes}} minutes.</p>
    <p><a href="{{.URL}}" style="padding: 10px 16px; background: #111; color: #fff; text-decoration: none">Sign in</a></p>
    <p>If you did not request this email you can ignore it.</p>
  </body>
</html>
`))

func (n *SMTPNotifier) SendMagicLink(_ context.Context, link MagicLink) error {
	msg, err := n.buildMessage(link)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))
	if err := n.send(addr, auth, n.cfg.From, []string{link.Email}, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", addr, err)
	}
	return nil
}

func (n *SMTPNotifier) buildMessage(link MagicLink) ([]byte, error) {
	minutes := int(link.ExpiresAt.Sub(n.now()).Round(time.Minute).Minutes())
	if minutes < 1 {
		minutes = 1
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	plain, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {"text/plain; charset=utf-8"}})
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(plain, "Sign in to Quick-Post:\r\n\r\n%s\r\n\r\nThe link expires in %d minutes.\r\n", link.URL, minutes)

	html, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {"text/html; charset=utf-8"}})
	if err != nil {
		return nil, err
	}
	if err := htmlBody.Execute(html, struct {
		URL     string
		Minutes int
	}{link.URL, minutes}); err != nil {
		return nil, fmt.Errorf("render email: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", n.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", link.Email)
	fmt.Fprintf(&msg, "Subject: Sign in to Quick-Post\r\n")
	fmt.Fprintf(&msg, "Date: %s\r\n", n.now().Format(time.RFC1123Z))
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary())
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}
