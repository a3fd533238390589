// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/animetrack/internal/platform/apperr"
	"github.com/taibuivan/animetrack/internal/platform/database/schema"
	"github.com/taibuivan/animetrack/internal/platform/dberr"
	"github.com/taibuivan/animetrack/internal/platform/postgres"
)

const resourcePayment = "Payment"

// PostgresRepository implements [Repository] on billing.payment.
type PostgresRepository struct {
	db postgres.Querier
}

// NewPostgresRepository creates a new Postgres implementation for payments.
func NewPostgresRepository(db postgres.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var paymentColumns = strings.Join(schema.BillingPayment.Columns(), ", ")

func scanPayment(row pgx.Row) (*Payment, error) {
	payment := &Payment{}
	var status string

	err := row.Scan(
		&payment.ID,
		&payment.UserID,
		&payment.Username,
		&payment.SessionID,
		&payment.PaymentIntentID,
		&payment.Amount,
		&payment.Currency,
		&status,
		&payment.ProductType,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, resourcePayment)
	}

	payment.Status = PaymentStatus(status)
	return payment, nil
}

// Create inserts a payment row.
func (repository *PostgresRepository) Create(context context.Context, payment *Payment) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		schema.BillingPayment.Table, paymentColumns,
	)

	_, err := repository.db.Exec(context, query,
		payment.ID,
		payment.UserID,
		payment.Username,
		payment.SessionID,
		payment.PaymentIntentID,
		payment.Amount,
		payment.Currency,
		string(payment.Status),
		payment.ProductType,
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	return dberr.Wrap(err, resourcePayment)
}

// FindBySessionID looks a payment up by its Stripe session.
func (repository *PostgresRepository) FindBySessionID(context context.Context, sessionID string) (*Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		paymentColumns, schema.BillingPayment.Table, schema.BillingPayment.SessionID,
	)
	return scanPayment(repository.db.QueryRow(context, query, sessionID))
}

// MarkCompleted sets the session's payment to completed and returns it.
func (repository *PostgresRepository) MarkCompleted(context context.Context, sessionID, paymentIntentID string) (*Payment, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = CASE WHEN $3 = '' THEN %s ELSE $3 END, %s = NOW()
		WHERE %s = $1
		RETURNING %s`,
		schema.BillingPayment.Table,
		schema.BillingPayment.Status,
		schema.BillingPayment.PaymentIntentID, schema.BillingPayment.PaymentIntentID,
		schema.BillingPayment.UpdatedAt,
		schema.BillingPayment.SessionID,
		paymentColumns,
	)
	return scanPayment(repository.db.QueryRow(context, query, sessionID, string(PaymentCompleted), paymentIntentID))
}

// MarkFailed only moves pending payments, so a late failure event cannot
// undo a completed one.
func (repository *PostgresRepository) MarkFailed(context context.Context, paymentIntentID string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1 AND %s = $3`,
		schema.BillingPayment.Table,
		schema.BillingPayment.Status, schema.BillingPayment.UpdatedAt,
		schema.BillingPayment.PaymentIntentID, schema.BillingPayment.Status,
	)

	tag, err := repository.db.Exec(context, query, paymentIntentID, string(PaymentFailed), string(PaymentPending))
	if err != nil {
		return dberr.Wrap(err, resourcePayment)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(resourcePayment)
	}
	return nil
}
