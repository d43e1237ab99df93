package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/guildledger/internal/domain"
	"github.com/iho/guildledger/internal/usecase"
)

const (
	lootColumns = `id, guild_id, item_name, estimated_value::text, distributed, distributed_at, created_at`

	getLootSQL          = `SELECT ` + lootColumns + ` FROM loot_records WHERE id = $1`
	getLootForUpdateSQL = getLootSQL + ` FOR UPDATE`

	deleteLootItemsSQL = `DELETE FROM loot_distribution_items WHERE loot_id = $1`
	insertLootItemSQL  = `
		INSERT INTO loot_distribution_items (loot_id, member_id, member_name, amount, created_at)
		VALUES ($1, $2, $3, $4::numeric, $5)`

	markLootDistributedSQL = `
		UPDATE loot_records
		SET distributed = TRUE, distributed_at = $2
		WHERE id = $1 AND distributed = FALSE`

	getLootItemsSQL = `
		SELECT loot_id, member_id, member_name, amount::text, created_at
		FROM loot_distribution_items
		WHERE loot_id = $1
		ORDER BY member_id`
)

// LootRepository implements usecase.LootRepository.
type LootRepository struct {
	db querier
}

// NewLootRepository creates a new LootRepository.
func NewLootRepository(pool *pgxpool.Pool) *LootRepository {
	return newLootRepository(pool)
}

func newLootRepository(db querier) *LootRepository {
	return &LootRepository{db: db}
}

// GetByIDForUpdate loads a loot record and row-locks it until tx ends.
func (r *LootRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LootRecord, error) {
	q, err := pgxTx(tx)
	if err != nil {
		return nil, err
	}
	return getLoot(ctx, q, getLootForUpdateSQL, id)
}

// GetByID loads a loot record without locking.
func (r *LootRepository) GetByID(ctx context.Context, id string) (*domain.LootRecord, error) {
	return getLoot(ctx, r.db, getLootSQL, id)
}

// ReplaceItems deletes the current shares of lootID and inserts items.
func (r *LootRepository) ReplaceItems(ctx context.Context, tx usecase.Transaction, lootID string, items []*domain.LootDistributionItem) error {
	q, err := pgxTx(tx)
	if err != nil {
		return err
	}

	if _, err := q.Exec(ctx, deleteLootItemsSQL, lootID); err != nil {
		return fmt.Errorf("delete loot items: %w", err)
	}

	for _, item := range items {
		_, err := q.Exec(ctx, insertLootItemSQL,
			lootID,
			item.MemberID,
			item.MemberName,
			item.Amount.String(),
			item.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert loot item %s: %w", item.MemberID, err)
		}
	}

	return nil
}

// MarkDistributed performs the one-way distributed transition.
func (r *LootRepository) MarkDistributed(ctx context.Context, tx usecase.Transaction, id string, at time.Time) error {
	q, err := pgxTx(tx)
	if err != nil {
		return err
	}

	tag, err := q.Exec(ctx, markLootDistributedSQL, id, at)
	if err != nil {
		return fmt.Errorf("mark loot distributed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLootAlreadyDistributed.WithField("loot_id", id)
	}

	return nil
}

// GetItems loads the current shares of one loot record.
func (r *LootRepository) GetItems(ctx context.Context, lootID string) ([]*domain.LootDistributionItem, error) {
	rows, err := r.db.Query(ctx, getLootItemsSQL, lootID)
	if err != nil {
		return nil, fmt.Errorf("get loot items: %w", err)
	}
	defer rows.Close()

	var items []*domain.LootDistributionItem
	for rows.Next() {
		var (
			item   domain.LootDistributionItem
			amount string
		)
		if err := rows.Scan(&item.LootID, &item.MemberID, &item.MemberName, &amount, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan loot item: %w", err)
		}
		if item.Amount, err = parseDecimal(amount); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}

	return items, rows.Err()
}

func getLoot(ctx context.Context, q querier, sql, id string) (*domain.LootRecord, error) {
	var (
		loot  domain.LootRecord
		value string
	)

	err := q.QueryRow(ctx, sql, id).Scan(
		&loot.ID,
		&loot.GuildID,
		&loot.ItemName,
		&value,
		&loot.Distributed,
		&loot.DistributedAt,
		&loot.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLootNotFound
		}
		return nil, fmt.Errorf("get loot record: %w", err)
	}

	if loot.EstimatedValue, err = parseDecimal(value); err != nil {
		return nil, err
	}

	return &loot, nil
}
