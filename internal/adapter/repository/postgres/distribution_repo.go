package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/guildledger/internal/domain"
	"github.com/iho/guildledger/internal/usecase"
)

const batchColumns = `id, guild_id, source, mode, total_amount::text, balance_before::text,
		balance_after::text, period_from, period_to, notes, distributor_id,
		distributor_name, reference_code, created_at`

const (
	insertBatchSQL = `
		INSERT INTO distribution_batches (
			id, guild_id, source, mode, total_amount, balance_before, balance_after,
			period_from, period_to, notes, distributor_id, distributor_name,
			reference_code, created_at
		) VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7::numeric, $8, $9, $10, $11, $12, $13, $14)`

	insertBatchItemSQL = `
		INSERT INTO distribution_items (id, batch_id, member_id, member_name, amount, percentage)
		VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric)`

	getBatchSQL = `SELECT ` + batchColumns + ` FROM distribution_batches WHERE id = $1`

	getBatchItemsSQL = `
		SELECT id, batch_id, member_id, member_name, amount::text, percentage::text
		FROM distribution_items
		WHERE batch_id = $1
		ORDER BY id`
)

// DistributionRepository implements usecase.DistributionRepository.
type DistributionRepository struct {
	db querier
}

// NewDistributionRepository creates a new DistributionRepository.
func NewDistributionRepository(pool *pgxpool.Pool) *DistributionRepository {
	return newDistributionRepository(pool)
}

func newDistributionRepository(db querier) *DistributionRepository {
	return &DistributionRepository{db: db}
}

// CreateBatch inserts a batch and all of its items inside tx.
func (r *DistributionRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, batch *domain.DistributionBatch, items []*domain.DistributionItem) error {
	q, err := pgxTx(tx)
	if err != nil {
		return err
	}

	_, err = q.Exec(ctx, insertBatchSQL,
		batch.ID,
		batch.GuildID,
		string(batch.Source),
		string(batch.Mode),
		batch.TotalAmount.StringFixed(2),
		batch.BalanceBefore.StringFixed(2),
		batch.BalanceAfter.StringFixed(2),
		batch.PeriodFrom,
		batch.PeriodTo,
		batch.Notes,
		batch.DistributorID,
		batch.DistributorName,
		batch.ReferenceCode,
		batch.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert distribution batch: %w", err)
	}

	for _, item := range items {
		_, err := q.Exec(ctx, insertBatchItemSQL,
			item.ID,
			batch.ID,
			item.MemberID,
			item.MemberName,
			item.Amount.StringFixed(2),
			nullDecimalArg(item.Percentage),
		)
		if err != nil {
			return fmt.Errorf("insert distribution item %s: %w", item.MemberID, err)
		}
	}

	return nil
}

// List returns one page of the guild's batches, newest first, together
// with the number of batches matching the filter.
func (r *DistributionRepository) List(ctx context.Context, guildID string, filter domain.BatchFilter) ([]*domain.DistributionBatch, int64, error) {
	where, args := batchFilterClause(guildID, filter)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM distribution_batches b`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count distribution batches: %w", err)
	}

	query := `SELECT ` + prefixColumns("b.", batchColumns) + ` FROM distribution_batches b` + where +
		` ORDER BY b.created_at DESC, b.id DESC` +
		` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list distribution batches: %w", err)
	}
	defer rows.Close()

	var batches []*domain.DistributionBatch
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, 0, err
		}
		batches = append(batches, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list distribution batches: %w", err)
	}

	return batches, total, nil
}

// GetByID loads one batch.
func (r *DistributionRepository) GetByID(ctx context.Context, id string) (*domain.DistributionBatch, error) {
	batch, err := scanBatch(r.db.QueryRow(ctx, getBatchSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBatchNotFound
		}
		return nil, err
	}
	return batch, nil
}

// GetItems loads the items of one batch.
func (r *DistributionRepository) GetItems(ctx context.Context, batchID string) ([]*domain.DistributionItem, error) {
	rows, err := r.db.Query(ctx, getBatchItemsSQL, batchID)
	if err != nil {
		return nil, fmt.Errorf("get distribution items: %w", err)
	}
	defer rows.Close()

	var items []*domain.DistributionItem
	for rows.Next() {
		var (
			item       domain.DistributionItem
			amount     string
			percentage *string
		)
		if err := rows.Scan(&item.ID, &item.BatchID, &item.MemberID, &item.MemberName, &amount, &percentage); err != nil {
			return nil, fmt.Errorf("scan distribution item: %w", err)
		}
		if item.Amount, err = parseDecimal(amount); err != nil {
			return nil, err
		}
		if item.Percentage, err = parseNullDecimal(percentage); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}

	return items, rows.Err()
}

func batchFilterClause(guildID string, filter domain.BatchFilter) (string, []any) {
	conds := []string{"b.guild_id = $1"}
	args := []any{guildID}

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}

	if filter.Source != "" {
		add("b.source = ?", string(filter.Source))
	}
	if filter.DistributorID != "" {
		add("b.distributor_id = ?", filter.DistributorID)
	}
	if filter.RecipientID != "" {
		add("EXISTS (SELECT 1 FROM distribution_items i WHERE i.batch_id = b.id AND i.member_id = ?)", filter.RecipientID)
	}
	if filter.From != nil {
		add("b.created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		add("b.created_at <= ?", *filter.To)
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

func prefixColumns(prefix, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = prefix + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

func scanBatch(row pgx.Row) (*domain.DistributionBatch, error) {
	var (
		b                    domain.DistributionBatch
		source, mode         string
		total, before, after string
		periodFrom, periodTo *time.Time
	)

	err := row.Scan(
		&b.ID,
		&b.GuildID,
		&source,
		&mode,
		&total,
		&before,
		&after,
		&periodFrom,
		&periodTo,
		&b.Notes,
		&b.DistributorID,
		&b.DistributorName,
		&b.ReferenceCode,
		&b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan distribution batch: %w", err)
	}

	b.Source = domain.DistributionSource(source)
	b.Mode = domain.AllocationMode(mode)
	b.PeriodFrom = periodFrom
	b.PeriodTo = periodTo

	if b.TotalAmount, err = parseDecimal(total); err != nil {
		return nil, err
	}
	if b.BalanceBefore, err = parseDecimal(before); err != nil {
		return nil, err
	}
	if b.BalanceAfter, err = parseDecimal(after); err != nil {
		return nil, err
	}

	return &b, nil
}
