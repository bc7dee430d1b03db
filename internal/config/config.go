package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port string `envconfig:"PORT" default:"8080"`

	DatabaseURL string `envconfig:"DATABASE_URL"`
	RabbitMQURL string `envconfig:"RABBITMQ_URL"`

	// Payvault (gateway de pagamento)
	PayvaultAPIKey        string `envconfig:"PAYVAULT_API_KEY"`
	PayvaultWebhookSecret string `envconfig:"PAYVAULT_WEBHOOK_SECRET"`

	// Canal de entrega (SMTP)
	MailHost     string `envconfig:"MAIL_HOST" default:"smtp.sendgrid.net"`
	MailPort     int    `envconfig:"MAIL_PORT" default:"587"`
	MailUser     string `envconfig:"MAIL_USER"`
	MailPass     string `envconfig:"MAIL_PASS"`
	MailFrom     string `envconfig:"MAIL_FROM" default:"no-reply@praxiscoaching.io"`
	MailFromName string `envconfig:"MAIL_FROM_NAME" default:"Praxis Coaching"`

	AdminEmail string `envconfig:"ADMIN_EMAIL"`

	// Limites de volume de envio
	EmailDailyLimit   int `envconfig:"EMAIL_DAILY_LIMIT" default:"300"`
	EmailMonthlyLimit int `envconfig:"EMAIL_MONTHLY_LIMIT" default:"5000"`
	EmailLogSize      int `envconfig:"EMAIL_LOG_SIZE" default:"100"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
