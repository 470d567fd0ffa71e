package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"ideaboard/internal/config"
)

// verificationTemplate is inlined so the binary needs no template files.
var verificationTemplate = template.Must(template.New("verification").Parse(`
<div style="font-family: sans-serif; max-width: 480px;">
  <h2>Confirm your email</h2>
  <p>Your verification code for the idea board:</p>
  <p style="font-size: 28px; letter-spacing: 4px; font-weight: bold;">{{.Code}}</p>
  <p>The code is valid for 24 hours. If you did not register, ignore this message.</p>
</div>`))

// MailService sends outbound mail over SMTP. When the SMTP environment is
// not configured the service stays constructed but disabled, and sends are
// silently skipped, so local development needs no mail server.
type MailService struct {
	host     string
	port     string
	username string
	password string
	from     string
	enabled  bool
	logger   *zap.Logger
}

func NewMailService(cfg config.Config, logger *zap.Logger) *MailService {
	enabled := cfg.SMTPHost != "" && cfg.SMTPPort != "" && cfg.SMTPUser != "" && cfg.SMTPPass != "" && cfg.SMTPFrom != ""
	if !enabled {
		logger.Warn("mail service disabled: missing SMTP environment variables")
	}
	return &MailService{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPass,
		from:     cfg.SMTPFrom,
		enabled:  enabled,
		logger:   logger,
	}
}

func (s *MailService) sendAsync(to []string, subject, body string) {
	if !s.enabled {
		return
	}

	go func() {
		auth := smtp.PlainAuth("", s.username, s.password, s.host)
		addr := fmt.Sprintf("%s:%s", s.host, s.port)

		mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
		msg := []byte(fmt.Sprintf("To: %s\r\n"+
			"From: Idea Board <%s>\r\n"+
			"Subject: %s\r\n"+
			"%s\r\n%s", strings.Join(to, ","), s.from, subject, mime, body))

		if err := smtp.SendMail(addr, auth, s.from, to, msg); err != nil {
			s.logger.Error("failed to send email",
				zap.Strings("to", to), zap.String("subject", subject), zap.Error(err))
			return
		}
		s.logger.Info("email sent", zap.Strings("to", to), zap.String("subject", subject))
	}()
}

// SendVerificationEmail mails the registration confirmation code.
func (s *MailService) SendVerificationEmail(to, code string) {
	var buf bytes.Buffer
	if err := verificationTemplate.Execute(&buf, map[string]string{"Code": code}); err != nil {
		s.logger.Error("failed to render verification email", zap.Error(err))
		return
	}
	s.sendAsync([]string{to}, "Confirm your idea board registration", buf.String())
}
