// mail отправляет письма активации. Для сервиса это fire-and-forget
// канал уведомлений: неудачная отправка логируется, но никогда не
// блокирует регистрацию.
package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// Sender — контракт отправки письма активации.
type Sender interface {
	// SendActivationMail отправляет на адрес to ссылку активации activationURL.
	SendActivationMail(ctx context.Context, to, activationURL string) error
}

// SMTPConfig — параметры SMTP-транспорта.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpSender struct {
	client *gomail.Client
	from   string
}

// NewSMTPSender создаёт SMTP-отправителя поверх go-mail.
func NewSMTPSender(cfg SMTPConfig) (Sender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("mail: empty smtp host")
	}

	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mail: new client: %w", err)
	}

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}

	return &smtpSender{client: client, from: from}, nil
}

func (s *smtpSender) SendActivationMail(ctx context.Context, to, activationURL string) error {
	const op = "mail.SendActivationMail"

	msg := gomail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	msg.Subject("Активация аккаунта")
	msg.SetBodyString(gomail.TypeTextHTML, fmt.Sprintf(
		`<div><h1>Для активации перейдите по ссылке</h1><a href="%s">%s</a></div>`,
		activationURL, activationURL,
	))

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
