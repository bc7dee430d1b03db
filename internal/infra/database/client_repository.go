package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/xavierca1/praxis-payments/internal/entity"
)

type ClientRepository struct {
	DB *sql.DB
}

func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{DB: db}
}

// Create insere incondicionalmente. O provedor entrega at-least-once,
// então a violação de unicidade em session_reference vira o sinal
// ErrDuplicateSession e o caller trata como sucesso.
func (r *ClientRepository) Create(ctx context.Context, c *entity.Client) error {
	query := `
		INSERT INTO clients (
			id, session_reference, user_id, email, name, phone, location,
			tier_name, amount_total, currency, status, raw_payload, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.DB.ExecContext(ctx, query,
		c.ID,
		c.SessionReference,
		nullString(c.UserID),
		nullString(c.Email),
		nullString(c.Name),
		nullString(c.Phone),
		nullString(c.Location),
		c.TierName,
		c.AmountTotal,
		c.Currency,
		c.Status,
		[]byte(c.RawPayload),
		c.CreatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return entity.ErrDuplicateSession
		}
		return err
	}

	return nil
}
