package payvault

import (
	"encoding/json"
	"strings"
)

// Tipos de evento que o pipeline sabe rotear.
const (
	EventPaymentSucceeded  = "payment_intent.succeeded"
	EventPaymentFailed     = "payment_intent.payment_failed"
	EventCheckoutCompleted = "checkout.session.completed"
	EventInvoicePaid       = "invoice.paid"
)

// Event é o envelope de webhook do Payvault. Os recursos aninhados
// (customer_details, line items, product) já chegam resolvidos no payload.
type Event struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Data EventData `json:"data"`

	// Raw guarda os bytes exatos recebidos, para auditoria.
	Raw json.RawMessage `json:"-"`
}

type EventData struct {
	Object EventObject `json:"object"`
}

// EventObject cobre os campos usados pelos quatro fluxos suportados.
// payment_intent usa Amount; checkout session usa AmountTotal; invoice
// usa AmountPaid.
type EventObject struct {
	ID              string            `json:"id"`
	Object          string            `json:"object"`
	Amount          int64             `json:"amount,omitempty"`
	AmountTotal     int64             `json:"amount_total,omitempty"`
	AmountPaid      int64             `json:"amount_paid,omitempty"`
	Currency        string            `json:"currency,omitempty"`
	Status          string            `json:"status,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	CustomerDetails *CustomerDetails  `json:"customer_details,omitempty"`
	CustomerEmail   string            `json:"customer_email,omitempty"`
	CustomerName    string            `json:"customer_name,omitempty"`
	LineItems       LineItemList      `json:"line_items,omitempty"`
	Lines           LineItemList      `json:"lines,omitempty"`
	Subscription    string            `json:"subscription,omitempty"`
}

type CustomerDetails struct {
	Email   string   `json:"email,omitempty"`
	Name    string   `json:"name,omitempty"`
	Phone   string   `json:"phone,omitempty"`
	Address *Address `json:"address,omitempty"`
}

type Address struct {
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

type LineItemList struct {
	Data []LineItem `json:"data,omitempty"`
}

type LineItem struct {
	Description string   `json:"description,omitempty"`
	Quantity    int64    `json:"quantity,omitempty"`
	Product     *Product `json:"product,omitempty"`
}

type Product struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	Deleted bool   `json:"deleted,omitempty"`
}

// ParseEvent decodifica o payload já verificado. Nunca chame antes de
// VerifySignature: re-serializar muda bytes e quebra a assinatura.
func ParseEvent(payload []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, err
	}
	ev.Raw = append(json.RawMessage(nil), payload...)
	return &ev, nil
}

// LineItemData retorna os line items independente do recurso de origem
// (checkout sessions usam line_items, invoices usam lines).
func (o *EventObject) LineItemData() []LineItem {
	if len(o.LineItems.Data) > 0 {
		return o.LineItems.Data
	}
	return o.Lines.Data
}

// DisplayString achata o endereço estruturado numa linha única,
// juntando os componentes não vazios com ", ".
func (a *Address) DisplayString() string {
	if a == nil {
		return ""
	}
	parts := make([]string, 0, 6)
	for _, p := range []string{a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	return strings.Join(parts, ", ")
}
