package payvault

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignatureHeader carrega o HMAC-SHA256 (hex) do corpo bruto da requisição.
const SignatureHeader = "Payvault-Signature"

// ComputeSignature assina exatamente os bytes recebidos no wire.
func ComputeSignature(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature valida a assinatura em tempo constante. Deve rodar
// antes de qualquer parse do corpo.
func VerifySignature(payload []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	expected := ComputeSignature(payload, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
