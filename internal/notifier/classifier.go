package notifier

import (
	"context"
	"errors"
	"strings"
)

// ErrorKind é o enum fechado de categorias de falha de envio.
type ErrorKind string

const (
	ErrorKindConfiguration ErrorKind = "CONFIGURATION_ERROR"
	ErrorKindTemplate      ErrorKind = "TEMPLATE_ERROR"
	ErrorKindNetwork       ErrorKind = "NETWORK_ERROR"
	ErrorKindProvider      ErrorKind = "PROVIDER_ERROR"
)

// Classify mapeia o erro de texto livre do canal para uma categoria.
// É heurística (substring matching) e best-effort: o canal é uma
// dependência externa opaca, sem contrato de erro tipado. Troque por
// erros tipados do provedor se um dia existirem.
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorKindNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key") ||
		strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "credential") ||
		strings.Contains(msg, "535") ||
		strings.Contains(msg, "volume limit") ||
		strings.Contains(msg, "limit reached"):
		return ErrorKindConfiguration
	case strings.Contains(msg, "template") ||
		strings.Contains(msg, "subject") ||
		strings.Contains(msg, "body") ||
		strings.Contains(msg, "recipient") ||
		strings.Contains(msg, "missing field"):
		return ErrorKindTemplate
	case strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "timed out") ||
		strings.Contains(msg, "deadline") ||
		strings.Contains(msg, "connection") ||
		strings.Contains(msg, "network") ||
		strings.Contains(msg, "dial") ||
		strings.Contains(msg, "eof") ||
		strings.Contains(msg, "no such host"):
		return ErrorKindNetwork
	default:
		return ErrorKindProvider
	}
}
