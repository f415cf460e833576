package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/domain"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, account_id, direction, remote_id, correlation_id, status,
		amount_atomic::text, asset_code, asset_scale, raw, updated_at`

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// UpsertBatch merges records inside tx. Existing rows are locked in id order
// first so concurrent batches over the same ids cannot deadlock. A stored
// row keeps its owner; the owners touched are returned sorted.
func (r *TransactionRepo) UpsertBatch(ctx context.Context, tx pgx.Tx, records []*domain.TransactionRecord) ([]string, error) {
	if len(records) == 0 {
		return []string{}, nil
	}

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	sort.Strings(ids)

	owners, err := r.lockExisting(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	query := `INSERT INTO transaction_records
			(id, account_id, direction, remote_id, correlation_id, status, amount_atomic, asset_code, asset_scale, raw, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9, COALESCE($10::jsonb, '{}'::jsonb), $11)
		ON CONFLICT (id) DO UPDATE SET
			remote_id      = COALESCE(EXCLUDED.remote_id, transaction_records.remote_id),
			correlation_id = COALESCE(EXCLUDED.correlation_id, transaction_records.correlation_id),
			status         = EXCLUDED.status,
			amount_atomic  = COALESCE(EXCLUDED.amount_atomic, transaction_records.amount_atomic),
			asset_code     = COALESCE(EXCLUDED.asset_code, transaction_records.asset_code),
			asset_scale    = COALESCE(EXCLUDED.asset_scale, transaction_records.asset_scale),
			raw            = transaction_records.raw || EXCLUDED.raw,
			updated_at     = EXCLUDED.updated_at`

	touched := make(map[string]struct{}, 2)
	for _, rec := range records {
		var raw *string
		if len(rec.Raw) > 0 {
			s := string(rec.Raw)
			raw = &s
		}
		_, err := tx.Exec(ctx, query,
			rec.ID, rec.AccountID, string(rec.Direction), rec.RemoteID, rec.CorrelationID,
			string(rec.Status), numericText(rec.AmountAtomic), rec.AssetCode, rec.AssetScale,
			raw, rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("upsert transaction record %s: %w", rec.ID, err)
		}

		owner, ok := owners[rec.ID]
		if !ok {
			owner = rec.AccountID
			owners[rec.ID] = owner
		}
		touched[owner] = struct{}{}
	}

	out := make([]string, 0, len(touched))
	for acct := range touched {
		out = append(out, acct)
	}
	sort.Strings(out)
	return out, nil
}

func (r *TransactionRepo) lockExisting(ctx context.Context, tx pgx.Tx, ids []string) (map[string]string, error) {
	query := `SELECT id, account_id
		FROM transaction_records WHERE id = ANY($1) ORDER BY id FOR UPDATE`

	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("lock transaction records: %w", err)
	}
	defer rows.Close()

	owners := make(map[string]string, len(ids))
	for rows.Next() {
		var id, accountID string
		if err := rows.Scan(&id, &accountID); err != nil {
			return nil, fmt.Errorf("scan locked transaction record: %w", err)
		}
		owners[id] = accountID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locked transaction records: %w", err)
	}
	return owners, nil
}

// ListUnapplied locks, in id order, the account's records whose signed
// amount differs from what was last applied to the balance.
func (r *TransactionRepo) ListUnapplied(ctx context.Context, tx pgx.Tx, accountID string) ([]domain.TransactionRecord, error) {
	query := `SELECT id, direction, amount_atomic::text, asset_code, asset_scale, applied_atomic::text
		FROM transaction_records
		WHERE account_id = $1 AND amount_atomic IS NOT NULL
			AND applied_atomic <> CASE WHEN direction = 'outgoing' THEN -amount_atomic ELSE amount_atomic END
		ORDER BY id FOR UPDATE`

	rows, err := tx.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("list unapplied transaction records: %w", err)
	}
	defer rows.Close()

	records := make([]domain.TransactionRecord, 0)
	for rows.Next() {
		var (
			rec             = domain.TransactionRecord{AccountID: accountID}
			direction       string
			amount, applied *string
		)
		if err := rows.Scan(&rec.ID, &direction, &amount, &rec.AssetCode, &rec.AssetScale, &applied); err != nil {
			return nil, fmt.Errorf("scan unapplied transaction record: %w", err)
		}
		rec.Direction = domain.Direction(direction)
		if rec.AmountAtomic, err = parseNumeric(amount); err != nil {
			return nil, err
		}
		if rec.AppliedAtomic, err = parseNumeric(applied); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unapplied transaction records: %w", err)
	}
	return records, nil
}

// MarkApplied sets applied_atomic to each record's full signed amount.
func (r *TransactionRepo) MarkApplied(ctx context.Context, tx pgx.Tx, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE transaction_records
		SET applied_atomic = CASE WHEN direction = 'outgoing' THEN -amount_atomic ELSE amount_atomic END
		WHERE id = ANY($1) AND amount_atomic IS NOT NULL`

	if _, err := tx.Exec(ctx, query, ids); err != nil {
		return fmt.Errorf("mark transaction records applied: %w", err)
	}
	return nil
}

// GetByID fetches a record by its document id.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*domain.TransactionRecord, error) {
	query := `SELECT ` + transactionColumns + ` FROM transaction_records WHERE id = $1`

	rec, err := scanTransaction(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction record by id: %w", err)
	}
	return rec, nil
}

// ListByAccount returns an account's records, newest first.
func (r *TransactionRepo) ListByAccount(ctx context.Context, params ports.TransactionListParams) ([]domain.TransactionRecord, error) {
	query := `SELECT ` + transactionColumns + ` FROM transaction_records WHERE account_id = $1`
	args := []any{params.AccountID}
	if params.Direction != nil {
		query += ` AND direction = $2`
		args = append(args, string(*params.Direction))
	}
	query += fmt.Sprintf(` ORDER BY updated_at DESC, id LIMIT $%d`, len(args)+1)
	args = append(args, params.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transaction records: %w", err)
	}
	defer rows.Close()

	records := make([]domain.TransactionRecord, 0)
	for rows.Next() {
		rec, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction records: %w", err)
	}
	return records, nil
}

func scanTransaction(row pgx.Row) (*domain.TransactionRecord, error) {
	var (
		rec       domain.TransactionRecord
		direction string
		status    string
		amount    *string
		raw       []byte
	)
	err := row.Scan(
		&rec.ID, &rec.AccountID, &direction, &rec.RemoteID, &rec.CorrelationID, &status,
		&amount, &rec.AssetCode, &rec.AssetScale, &raw, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Direction = domain.Direction(direction)
	rec.Status = domain.TransactionStatus(status)
	rec.Raw = raw
	if rec.AmountAtomic, err = parseNumeric(amount); err != nil {
		return nil, err
	}
	return &rec, nil
}
