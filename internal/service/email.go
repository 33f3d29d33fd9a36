package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"gopkg.in/gomail.v2"

	"shared-wallet-backend/internal/config"
	"shared-wallet-backend/internal/domain"
	"shared-wallet-backend/internal/ledger"
	"shared-wallet-backend/internal/logger"
)

// mailSender delivers one plain-text message. Providers differ only here.
type mailSender interface {
	Send(ctx context.Context, to, toName, subject, body string) error
	Name() string
}

type smtpSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
}

func (s *smtpSender) Name() string { return "smtp" }

func (s *smtpSender) Send(ctx context.Context, to, toName, subject, body string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetAddressHeader("To", to, toName)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email via gomail: %w", err)
	}
	return nil
}

type sendGridSender struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

func (s *sendGridSender) Name() string { return "sendgrid" }

func (s *sendGridSender) Send(ctx context.Context, to, toName, subject, body string) error {
	from := sgmail.NewEmail(s.fromName, s.from)
	recipient := sgmail.NewEmail(toName, to)
	message := sgmail.NewSingleEmail(from, subject, recipient, body, "")

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

type noopSender struct{}

func (noopSender) Name() string { return "none" }

func (noopSender) Send(ctx context.Context, to, toName, subject, body string) error {
	logger.WithService("email").DebugContext(ctx, "Email delivery disabled, skipping", "to", to, "subject", subject)
	return nil
}

type emailService struct {
	sender mailSender
}

// NewEmailService picks the provider named in cfg.Provider.
func NewEmailService(cfg config.EmailConfig) EmailService {
	switch cfg.Provider {
	case config.EmailProviderSendGrid:
		return newEmailService(&sendGridSender{
			client:   sendgrid.NewSendClient(cfg.SendGridAPIKey),
			from:     cfg.From,
			fromName: cfg.FromName,
		})
	case config.EmailProviderNone:
		return newEmailService(noopSender{})
	default:
		return newEmailService(&smtpSender{
			host:     cfg.SMTPHost,
			port:     cfg.SMTPPort,
			username: cfg.SMTPUser,
			password: cfg.SMTPPassword,
			from:     cfg.From,
			fromName: cfg.FromName,
		})
	}
}

func newEmailService(sender mailSender) *emailService {
	return &emailService{sender: sender}
}

func (s *emailService) SendSettlementRecorded(ctx context.Context, to domain.Recipient, walletName, message string) error {
	subject := fmt.Sprintf("Payment recorded in %s", walletName)
	body := fmt.Sprintf("Hello %s,\n\n%s.\n\nPlease confirm it in %q once the money has arrived.\n\nBest regards,\nShared Wallet", to.Name, message, walletName)
	return s.send(ctx, to, subject, body)
}

func (s *emailService) SendSettlementConfirmed(ctx context.Context, to domain.Recipient, walletName, message string) error {
	subject := fmt.Sprintf("Payment confirmed in %s", walletName)
	body := fmt.Sprintf("Hello %s,\n\n%s. Your balances in %q have been updated.\n\nBest regards,\nShared Wallet", to.Name, message, walletName)
	return s.send(ctx, to, subject, body)
}

func (s *emailService) SendDebtReminder(ctx context.Context, to domain.Recipient, walletName string, debts []DebtLine) error {
	if len(debts) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\nThis is a reminder of your open balances in %q:\n\n", to.Name, walletName)
	var total int64
	for _, d := range debts {
		fmt.Fprintf(&b, "  - %s to %s\n", ledger.FormatAmount(d.AmountCents), d.CreditorName)
		total += d.AmountCents
	}
	fmt.Fprintf(&b, "\nTotal: %s\n\nBest regards,\nShared Wallet", ledger.FormatAmount(total))

	subject := fmt.Sprintf("You owe %s in %s", ledger.FormatAmount(total), walletName)
	return s.send(ctx, to, subject, b.String())
}

// send skips recipients whose contact is not an email address; contacts are free text.
func (s *emailService) send(ctx context.Context, to domain.Recipient, subject, body string) error {
	addr, ok := emailAddress(to.Contact)
	if !ok {
		logger.Debug("Recipient has no email contact, skipping", "memberID", to.MemberID)
		return nil
	}

	logger.ExternalServiceCall(s.sender.Name(), "Send", "to", addr, "subject", subject)
	err := s.sender.Send(ctx, addr, to.Name, subject, body)
	logger.ExternalServiceResult(s.sender.Name(), "Send", err, "to", addr)
	return err
}

func emailAddress(contact string) (string, bool) {
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return "", false
	}
	parsed, err := mail.ParseAddress(contact)
	if err != nil {
		return "", false
	}
	return parsed.Address, true
}

// EmailActivitySink mails the counterparty of settlement activities.
type EmailActivitySink struct {
	email EmailService
}

func NewEmailActivitySink(email EmailService) *EmailActivitySink {
	return &EmailActivitySink{email: email}
}

func (s *EmailActivitySink) Deliver(ctx context.Context, a domain.Activity) error {
	var send func(ctx context.Context, to domain.Recipient, walletName, message string) error
	switch a.Type {
	case domain.ActivityTypeSettlementAdded:
		send = s.email.SendSettlementRecorded
	case domain.ActivityTypeSettlementConfirmed:
		send = s.email.SendSettlementConfirmed
	default:
		return nil
	}

	var firstErr error
	for _, r := range a.Recipients {
		if err := send(ctx, r, a.WalletName, a.Message); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
