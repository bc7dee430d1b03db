package mail

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

func NewEmailSender(host string, port int, user, password string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
	}
}

// Send entrega uma mensagem via SMTP e devolve o Message-ID gerado.
// DialAndSend roda numa goroutine e o select abandona a espera quando
// o deadline do contexto estoura (a conexão órfã morre sozinha; o
// caller já registrou a falha).
func (s *EmailSender) Send(ctx context.Context, from, to, subject, body string) (string, error) {
	messageID := fmt.Sprintf("<%s@%s>", uuid.New().String(), s.Host)

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetHeader("Message-ID", messageID)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	done := make(chan error, 1)
	go func() {
		done <- d.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return "", fmt.Errorf("smtp send failed: %w", err)
		}
		return messageID, nil
	case <-ctx.Done():
		return "", fmt.Errorf("smtp send timed out: %w", ctx.Err())
	}
}

// Probe abre e fecha uma conexão autenticada, sem enviar nada. Usado
// pelo validador de configuração para confirmar a credencial SMTP.
func (s *EmailSender) Probe(ctx context.Context) error {
	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	type dialResult struct {
		closer gomail.SendCloser
		err    error
	}
	done := make(chan dialResult, 1)
	go func() {
		sc, err := d.Dial()
		done <- dialResult{sc, err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return fmt.Errorf("smtp probe failed: %w", res.err)
		}
		res.closer.Close()
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp probe timed out: %w", ctx.Err())
	}
}
