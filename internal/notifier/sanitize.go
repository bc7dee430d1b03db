package notifier

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxNameLen = 100
	maxTierLen = 50
)

// Padrão estrito, deliberadamente mais exigente que net/mail: o canal
// de entrega rejeita endereços exóticos de qualquer forma.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// NormalizeEmail trim + case-fold. Não valida.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// SanitizeName limita o nome a 100 caracteres.
func SanitizeName(name string) string {
	return truncateRunes(strings.TrimSpace(name), maxNameLen)
}

// SanitizeTier limita o nome do tier a 50 caracteres.
func SanitizeTier(tier string) string {
	return truncateRunes(strings.TrimSpace(tier), maxTierLen)
}

// truncateRunes corta em limite de runa, nunca no meio de um caractere
// multi-byte.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// NormalizeCurrency converte para código de 3 letras maiúsculas.
// Qualquer coisa fora do formato cai no default USD.
func NormalizeCurrency(currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return "USD"
	}
	return currency
}

// FormatAmount converte centavos para o valor de exibição (2500 -> "25.00").
func FormatAmount(minorUnits int64) string {
	return fmt.Sprintf("%.2f", float64(minorUnits)/100.0)
}
