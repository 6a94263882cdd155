package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"
)

type SMTPSender struct {
	host        string
	port        string
	username    string
	password    string
	from        string
	frontendURL string
}

func NewSMTPSender(host, port, username, password, from, frontendURL string) *SMTPSender {
	if from == "" {
		from = username
	}
	return &SMTPSender{
		host:        host,
		port:        port,
		username:    username,
		password:    password,
		from:        from,
		frontendURL: frontendURL,
	}
}

type message struct {
	Subject string
	Link    string
}

const bodyTpl = `
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; padding: 20px;">
  <div style="max-width: 600px; margin: auto;">
    <h2>{{.Subject}}</h2>
    <p>Follow the link below to continue:</p>
    <p><a href="{{.Link}}">{{.Link}}</a></p>
    <p>If you did not expect this email you can ignore it.</p>
  </div>
</body>
</html>
`

var body = template.Must(template.New("notify").Parse(bodyTpl))

func (s *SMTPSender) compose(kind Kind, token string) (message, error) {
	switch kind {
	case KindVerify:
		return message{Subject: "Verify your account", Link: s.frontendURL + "/verify-account/" + token}, nil
	case KindInvite:
		return message{Subject: "You have been invited", Link: s.frontendURL + "/invite/" + token}, nil
	case KindReset:
		return message{Subject: "Reset your password", Link: s.frontendURL + "/reset-password/" + token}, nil
	case KindSpeakerWelcome:
		return message{Subject: "Your speaker account is ready", Link: s.frontendURL + "/reset-password/" + token}, nil
	default:
		return message{}, fmt.Errorf("unknown notification kind %q", kind)
	}
}

// Send delivers over implicit TLS (port 465 style). The context is
// not threaded into net/smtp, which has no context support; callers
// bound the call with their own deadline policy.
func (s *SMTPSender) Send(_ context.Context, kind Kind, email, token string) error {
	msg, err := s.compose(kind, token)
	if err != nil {
		return err
	}

	var rendered bytes.Buffer
	if err := body.Execute(&rendered, msg); err != nil {
		return err
	}

	payload := []byte(
		fmt.Sprintf("From: %s\r\n", s.from) +
			fmt.Sprintf("To: %s\r\n", email) +
			fmt.Sprintf("Subject: %s\r\n", msg.Subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=\"utf-8\"\r\n" +
			"\r\n" +
			rendered.String(),
	)

	conn, err := tls.Dial("tcp", s.host+":"+s.port, &tls.Config{ServerName: s.host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return err
	}
	defer client.Quit()

	if err := client.Auth(smtp.PlainAuth("", s.username, s.password, s.host)); err != nil {
		return err
	}
	if err := client.Mail(s.from); err != nil {
		return err
	}
	if err := client.Rcpt(email); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	return w.Close()
}
