package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xavierca1/praxis-payments/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

// Upsert usa o email como alvo de conflito: reenvio do mesmo email
// atualiza o registro em vez de duplicar.
func (r *LeadRepository) Upsert(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (id, name, email, phone, location, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (email)
		DO UPDATE SET
			name = COALESCE(NULLIF(EXCLUDED.name, ''), leads.name),
			phone = COALESCE(NULLIF(EXCLUDED.phone, ''), leads.phone),
			location = COALESCE(NULLIF(EXCLUDED.location, ''), leads.location)
		RETURNING id, status, created_at
	`

	return r.DB.QueryRowContext(
		ctx,
		query,
		lead.ID,
		lead.Name,
		lead.Email,
		nullString(lead.Phone),
		nullString(lead.Location),
		lead.Status,
	).Scan(
		&lead.ID,
		&lead.Status,
		&lead.CreatedAt,
	)
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `
		SELECT id, name, email, COALESCE(phone, ''), COALESCE(location, ''),
		       status, COALESCE(payment_reference, ''), COALESCE(amount_paid, 0),
		       created_at, paid_at, converted_at
		FROM leads
		WHERE id = $1
	`

	var lead entity.Lead
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&lead.Location,
		&lead.Status,
		&lead.PaymentReference,
		&lead.AmountPaid,
		&lead.CreatedAt,
		&lead.PaidAt,
		&lead.ConvertedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *LeadRepository) MarkPaid(ctx context.Context, id, paymentReference string, amountPaid int64) error {
	query := `
		UPDATE leads
		SET status = $2, payment_reference = $3, amount_paid = $4, paid_at = NOW()
		WHERE id = $1
	`
	return r.execExpectingRow(ctx, query, id, entity.LeadStatusPaid, paymentReference, amountPaid)
}

func (r *LeadRepository) MarkPaymentFailed(ctx context.Context, id string) error {
	query := `UPDATE leads SET status = $2 WHERE id = $1`
	return r.execExpectingRow(ctx, query, id, entity.LeadStatusPaymentFailed)
}

func (r *LeadRepository) MarkConvertedByEmail(ctx context.Context, email string) error {
	query := `
		UPDATE leads
		SET status = $2, converted_at = NOW()
		WHERE email = $1
	`
	return r.execExpectingRow(ctx, query, email, entity.LeadStatusConverted)
}

func (r *LeadRepository) execExpectingRow(ctx context.Context, query string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
