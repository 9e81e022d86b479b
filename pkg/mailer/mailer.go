// Файл: pkg/mailer/mailer.go
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"hr-portal/pkg/config"

	"go.uber.org/zap"
)

// Message — контракт доставки: {to, subject, text, html}.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type ServiceInterface interface {
	Send(ctx context.Context, msg Message) error
}

var ErrNotConfigured = fmt.Errorf("SMTP-учётные данные не настроены")

type Service struct {
	cfg    config.MailConfig
	logger *zap.Logger
}

func NewService(cfg config.MailConfig, logger *zap.Logger) ServiceInterface {
	return &Service{cfg: cfg, logger: logger}
}

// Send отправляет письмо через SMTP. Отсутствие учётки — восстановимая ситуация:
// вызывающий код переживает её как emailSent=false, транзакция не откатывается.
func (s *Service) Send(ctx context.Context, msg Message) error {
	if !s.cfg.IsConfigured() {
		s.logger.Warn("Отправка email пропущена: SMTP не настроен", zap.String("to", msg.To))
		return ErrNotConfigured
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", s.cfg.From))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", msg.To))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	sb.WriteString("MIME-Version: 1.0\r\n")
	if msg.HTML != "" {
		sb.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
		sb.WriteString(msg.HTML)
	} else {
		sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
		sb.WriteString(msg.Text)
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, s.cfg.From, []string{msg.To}, []byte(sb.String()))
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("ошибка отправки письма: %w", err)
		}
	}

	s.logger.Info("Письмо отправлено", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}
