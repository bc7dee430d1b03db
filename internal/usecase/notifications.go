package usecase

import (
	"fmt"

	"github.com/xavierca1/praxis-payments/internal/entity"
	"github.com/xavierca1/praxis-payments/internal/notifier"
)

// Construtores de NotificationJob. Cada evento gera de 0 a 2 jobs; a
// sanitização (trim, caps de nome/tier, moeda) acontece aqui, na
// montagem do conteúdo.

func buildLeadJobs(lead *entity.Lead, adminEmail string) []entity.NotificationJob {
	name := notifier.SanitizeName(lead.Name)
	jobs := make([]entity.NotificationJob, 0, 2)

	if adminEmail != "" {
		jobs = append(jobs, entity.NotificationJob{
			Kind:      entity.KindAdminNotification,
			Recipient: adminEmail,
			Subject:   fmt.Sprintf("New lead: %s", name),
			Body: fmt.Sprintf(
				"A new lead was captured.\n\nName: %s\nEmail: %s\nPhone: %s\nLocation: %s\n",
				name, lead.Email, orDash(lead.Phone), orDash(lead.Location),
			),
		})
	}

	jobs = append(jobs, entity.NotificationJob{
		Kind:      entity.KindUserConfirmation,
		Recipient: notifier.NormalizeEmail(lead.Email),
		Subject:   "We received your request",
		Body: fmt.Sprintf(
			"Hi %s,\n\nThanks for reaching out. We will get back to you shortly with the next steps.\n\n— Praxis Coaching\n",
			name,
		),
	})

	return jobs
}

func buildPurchaseJobs(client *entity.Client, adminEmail string) []entity.NotificationJob {
	name := notifier.SanitizeName(client.Name)
	tier := notifier.SanitizeTier(client.TierName)
	currency := notifier.NormalizeCurrency(client.Currency)
	amount := notifier.FormatAmount(client.AmountTotal)

	jobs := make([]entity.NotificationJob, 0, 2)

	if adminEmail != "" {
		jobs = append(jobs, entity.NotificationJob{
			Kind:      entity.KindAdminNotification,
			Recipient: adminEmail,
			Subject:   fmt.Sprintf("New purchase: %s (%s %s)", tier, amount, currency),
			Body: fmt.Sprintf(
				"A purchase was completed.\n\nTier: %s\nAmount: %s %s\nName: %s\nEmail: %s\nSession: %s\n",
				tier, amount, currency, orDash(name), orDash(client.Email), client.SessionReference,
			),
		})
	}

	if client.Email != "" {
		jobs = append(jobs, entity.NotificationJob{
			Kind:      entity.KindUserWelcome,
			Recipient: notifier.NormalizeEmail(client.Email),
			Subject:   fmt.Sprintf("Welcome to %s!", tier),
			Body: fmt.Sprintf(
				"Hi %s,\n\nYour payment of %s %s was confirmed and your %s access is now active.\n\nWelcome aboard!\n\n— Praxis Coaching\n",
				firstNameOrThere(name), amount, currency, tier,
			),
		})
	}

	return jobs
}

func buildPaymentSucceededJobs(lead *entity.Lead, amount int64, currency, adminEmail string) []entity.NotificationJob {
	cur := notifier.NormalizeCurrency(currency)
	display := notifier.FormatAmount(amount)
	jobs := make([]entity.NotificationJob, 0, 2)

	if adminEmail != "" {
		body := fmt.Sprintf("A payment of %s %s was confirmed.\n", display, cur)
		if lead != nil {
			body += fmt.Sprintf("\nLead: %s <%s>\n", notifier.SanitizeName(lead.Name), lead.Email)
		}
		jobs = append(jobs, entity.NotificationJob{
			Kind:      entity.KindAdminNotification,
			Recipient: adminEmail,
			Subject:   fmt.Sprintf("Payment received: %s %s", display, cur),
			Body:      body,
		})
	}

	if lead != nil && lead.Email != "" {
		jobs = append(jobs, entity.NotificationJob{
			Kind:      entity.KindUserConfirmation,
			Recipient: notifier.NormalizeEmail(lead.Email),
			Subject:   "Payment confirmed",
			Body: fmt.Sprintf(
				"Hi %s,\n\nYour payment of %s %s was received. Thank you!\n\n— Praxis Coaching\n",
				firstNameOrThere(notifier.SanitizeName(lead.Name)), display, cur,
			),
		})
	}

	return jobs
}

func buildPaymentFailedJobs(lead *entity.Lead, adminEmail string) []entity.NotificationJob {
	if adminEmail == "" {
		return nil
	}

	body := "A payment attempt failed.\n"
	if lead != nil {
		body += fmt.Sprintf("\nLead: %s <%s>\n", notifier.SanitizeName(lead.Name), lead.Email)
	}
	return []entity.NotificationJob{{
		Kind:      entity.KindAdminNotification,
		Recipient: adminEmail,
		Subject:   "Payment failed",
		Body:      body,
	}}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func firstNameOrThere(name string) string {
	if name == "" {
		return "there"
	}
	return name
}
