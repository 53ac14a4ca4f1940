package services

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/promptarena/prompt-arena/config"
)

type EmailService struct {
	cfg *config.Config
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{cfg: cfg}
}

func (s *EmailService) SendEmail(to []string, subject string, body string) error {
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)

	msg := []byte("To: " + to[0] + "\r\n" +
		"From: " + s.cfg.SMTPFrom + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	tlsconfig := &tls.Config{
		InsecureSkipVerify: true,
		ServerName:         s.cfg.SMTPHost,
	}

	var client *smtp.Client
	if s.cfg.SMTPPort == 465 {
		// Прямое TLS-соединение (обычно порт 465)
		conn, err := tls.Dial("tcp", addr, tlsconfig)
		if err != nil {
			return fmt.Errorf("ошибка TLS соединения: %w", err)
		}
		defer conn.Close()
		client, err = smtp.NewClient(conn, s.cfg.SMTPHost)
		if err != nil {
			return fmt.Errorf("ошибка создания SMTP клиента: %w", err)
		}
	} else {
		// STARTTLS (обычно порт 587)
		c, err := smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("ошибка соединения SMTP: %w", err)
		}
		client = c
		if err = client.StartTLS(tlsconfig); err != nil {
			client.Close()
			return fmt.Errorf("ошибка команды STARTTLS: %w", err)
		}
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("ошибка аутентификации SMTP: %w", err)
	}

	if err := client.Mail(s.cfg.SMTPFrom); err != nil {
		return fmt.Errorf("ошибка MAIL FROM: %w", err)
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return fmt.Errorf("ошибка RCPT TO: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("ошибка команды DATA: %w", err)
	}

	_, err = w.Write(msg)
	if err != nil {
		return fmt.Errorf("ошибка записи сообщения: %w", err)
	}

	err = w.Close()
	if err != nil {
		return fmt.Errorf("ошибка закрытия DATA: %w", err)
	}

	return nil
}

var welcomeTemplate = template.Must(template.New("welcome").Parse(`
<p>Hello{{if .Name}} {{.Name}}{{end}},</p>
<p>Your Prompt Arena account is ready. Sign in and pick a competition:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
`))

var assignmentTemplate = template.Must(template.New("assignment").Parse(`
<p>Hello,</p>
<p>You have been assigned <b>{{.Count}}</b> submission(s) to review in
competition <b>{{.Competition}}</b>.</p>
<p>Open your review queue: <a href="{{.Link}}">{{.Link}}</a></p>
`))

func renderEmailBody(t *template.Template, data interface{}) (string, error) {
	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return "", fmt.Errorf("ошибка выполнения шаблона %s: %w", t.Name(), err)
	}
	return body.String(), nil
}

func (s *EmailService) SendWelcomeEmail(userEmail, name string) error {
	subject := "Welcome to Prompt Arena!"
	data := struct {
		Name string
		Link string
	}{
		Name: name,
		Link: s.cfg.PublicURL,
	}

	htmlBody, err := renderEmailBody(welcomeTemplate, data)
	if err != nil {
		return fmt.Errorf("ошибка генерации тела приветственного письма: %w", err)
	}

	return s.SendEmail([]string{userEmail}, subject, htmlBody)
}

func (s *EmailService) SendAssignmentEmail(userEmail, competitionTitle string, assignedCount int) error {
	subject := fmt.Sprintf("Review assignments for '%s'", competitionTitle)
	data := struct {
		Competition string
		Count       int
		Link        string
	}{
		Competition: competitionTitle,
		Count:       assignedCount,
		Link:        fmt.Sprintf("%s/judge/assignments", s.cfg.PublicURL),
	}

	htmlBody, err := renderEmailBody(assignmentTemplate, data)
	if err != nil {
		return fmt.Errorf("ошибка генерации тела письма о назначениях: %w", err)
	}

	return s.SendEmail([]string{userEmail}, subject, htmlBody)
}

func (s *EmailService) SendSystemNotificationEmail(emails []string, subject, message string) error {
	for _, email := range emails {
		if err := s.SendEmail([]string{email}, subject, message); err != nil {
			return fmt.Errorf("ошибка отправки системного уведомления %s: %w", email, err)
		}
	}
	return nil
}
