package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const grantColumns = `id, sender_account_id, receiver_account_id, amount, amount_atomic::text, asset_code, asset_scale,
		description, status, stage, incoming_payment_id, quote_id, debit_amount_atomic::text, debit_asset_code,
		debit_asset_scale, continue_uri, continue_token, redirect_url, finish_nonce, client_nonce, grant_endpoint,
		outgoing_payment_id, error_message, created_at, updated_at, completed_at`

const grantColumnsPlain = `id, sender_account_id, receiver_account_id, amount, amount_atomic, asset_code, asset_scale,
		description, status, stage, incoming_payment_id, quote_id, debit_amount_atomic, debit_asset_code,
		debit_asset_scale, continue_uri, continue_token, redirect_url, finish_nonce, client_nonce, grant_endpoint,
		outgoing_payment_id, error_message, created_at, updated_at, completed_at`

// GrantRepo implements ports.GrantStateRepository.
type GrantRepo struct {
	pool Pool
}

// NewGrantRepo creates a new GrantRepo.
func NewGrantRepo(pool Pool) *GrantRepo {
	return &GrantRepo{pool: pool}
}

// Create inserts a new grant state.
func (r *GrantRepo) Create(ctx context.Context, g *domain.GrantState) error {
	query := `INSERT INTO grant_states (` + grantColumnsPlain + `)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9, $10, $11, $12, $13::numeric, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)`

	_, err := r.pool.Exec(ctx, query,
		g.ID, g.SenderAccountID, g.ReceiverAccountID, g.Amount, numericText(g.AmountAtomic), g.AssetCode, g.AssetScale,
		g.Description, string(g.Status), string(g.Stage), g.IncomingPaymentID, g.QuoteID, numericText(g.DebitAmountAtomic),
		g.DebitAssetCode, g.DebitAssetScale, g.ContinueURI, g.ContinueToken, g.RedirectURL, g.FinishNonce, g.ClientNonce, g.GrantEndpoint,
		g.OutgoingPaymentID, g.ErrorMessage, g.CreatedAt, g.UpdatedAt, g.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert grant state: %w", err)
	}
	return nil
}

// GetByID fetches a grant state by id.
func (r *GrantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.GrantState, error) {
	query := `SELECT ` + grantColumns + ` FROM grant_states WHERE id = $1`

	g, err := scanGrant(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get grant state by id: %w", err)
	}
	return g, nil
}

// ListStalled returns pending grants in stage whose last update is older
// than cutoff, oldest first.
func (r *GrantRepo) ListStalled(ctx context.Context, stage domain.GrantStage, cutoff time.Time, limit int) ([]domain.GrantState, error) {
	query := `SELECT ` + grantColumns + ` FROM grant_states
		WHERE status = 'pending_grant' AND stage = $1 AND updated_at < $2
		ORDER BY updated_at
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, string(stage), cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("list stalled grant states: %w", err)
	}
	defer rows.Close()

	grants := make([]domain.GrantState, 0)
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan grant state: %w", err)
		}
		grants = append(grants, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grant states: %w", err)
	}
	return grants, nil
}

func scanGrant(row pgx.Row) (*domain.GrantState, error) {
	var (
		g                   domain.GrantState
		status, stage       string
		amount, debitAmount *string
	)
	err := row.Scan(
		&g.ID, &g.SenderAccountID, &g.ReceiverAccountID, &g.Amount, &amount, &g.AssetCode, &g.AssetScale,
		&g.Description, &status, &stage, &g.IncomingPaymentID, &g.QuoteID, &debitAmount, &g.DebitAssetCode,
		&g.DebitAssetScale, &g.ContinueURI, &g.ContinueToken, &g.RedirectURL, &g.FinishNonce, &g.ClientNonce, &g.GrantEndpoint,
		&g.OutgoingPaymentID, &g.ErrorMessage, &g.CreatedAt, &g.UpdatedAt, &g.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	g.Status = domain.GrantStatus(status)
	g.Stage = domain.GrantStage(stage)
	if g.AmountAtomic, err = parseNumeric(amount); err != nil {
		return nil, err
	}
	if g.DebitAmountAtomic, err = parseNumeric(debitAmount); err != nil {
		return nil, err
	}
	return &g, nil
}

// Transition is a compare-and-set on (stage, status). Nil fields keep their
// stored value. A terminal grant never matches.
func (r *GrantRepo) Transition(ctx context.Context, t domain.GrantTransition) (bool, error) {
	query := `UPDATE grant_states SET
			stage               = $3,
			status              = $4,
			incoming_payment_id = COALESCE($5, incoming_payment_id),
			quote_id            = COALESCE($6, quote_id),
			debit_amount_atomic = COALESCE($7::numeric, debit_amount_atomic),
			debit_asset_code    = COALESCE($8, debit_asset_code),
			debit_asset_scale   = COALESCE($9, debit_asset_scale),
			continue_uri        = COALESCE($10, continue_uri),
			continue_token      = COALESCE($11, continue_token),
			redirect_url        = COALESCE($12, redirect_url),
			finish_nonce        = COALESCE($13, finish_nonce),
			grant_endpoint      = COALESCE($14, grant_endpoint),
			outgoing_payment_id = COALESCE($15, outgoing_payment_id),
			error_message       = COALESCE($16, error_message),
			completed_at        = COALESCE($17, completed_at),
			updated_at          = NOW()
		WHERE id = $1 AND stage = $2 AND status = 'pending_grant'`

	tag, err := r.pool.Exec(ctx, query,
		t.ID, string(t.From), string(t.To), string(t.Status),
		t.IncomingPaymentID, t.QuoteID, numericText(t.DebitAmountAtomic), t.DebitAssetCode, t.DebitAssetScale,
		t.ContinueURI, t.ContinueToken, t.RedirectURL, t.FinishNonce, t.GrantEndpoint,
		t.OutgoingPaymentID, t.ErrorMessage, t.CompletedAt,
	)
	if err != nil {
		return false, fmt.Errorf("transition grant state %s: %w", t.ID, err)
	}
	return tag.RowsAffected() == 1, nil
}
