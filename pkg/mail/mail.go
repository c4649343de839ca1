package mail

import (
	"context"
	"fmt"

	"PostServer/config"
	"PostServer/pkg/logger"

	"gopkg.in/gomail.v2"
)

// Sender SMTP 发信
type Sender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSender 创建发信器
func NewSender(cfg config.MailConfig) *Sender {
	return &Sender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// Send 发送 HTML 邮件
func (s *Sender) Send(ctx context.Context, to, subject, htmlBody string) error {
	m := BuildMessage(s.from, to, subject, htmlBody)
	if err := s.dialer.DialAndSend(m); err != nil {
		logger.Error(ctx, "邮件发送失败",
			logger.String("subject", subject),
			logger.ErrorField("error", err),
		)
		return fmt.Errorf("send mail: %w", err)
	}
	logger.Info(ctx, "邮件发送成功", logger.String("subject", subject))
	return nil
}

// BuildMessage 组装邮件
func BuildMessage(from, to, subject, htmlBody string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)
	return m
}
