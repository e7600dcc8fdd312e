package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ItemRow — плоский снимок предмета: стак в инвентаре (SlotIndex >= 0,
// EquipSlot 0) или надетый предмет (SlotIndex -1, EquipSlot > 0).
type ItemRow struct {
	TemplateID int32
	Count      int32
	Durability *int32
	SlotIndex  int32
	EquipSlot  int32
}

// ItemRepository управляет предметами персонажей в БД.
type ItemRepository struct {
	db *pgxpool.Pool
}

// NewItemRepository создаёт новый ItemRepository.
func NewItemRepository(db *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{db: db}
}

// LoadItems загружает все предметы персонажа в порядке слотов.
func (r *ItemRepository) LoadItems(ctx context.Context, characterID int64) ([]ItemRow, error) {
	rows, err := r.db.Query(ctx,
		`SELECT template_id, count, durability, slot_index, equip_slot
		 FROM character_items
		 WHERE character_id = $1
		 ORDER BY slot_index`, characterID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying items for character %d: %w", characterID, err)
	}
	defer rows.Close()

	items := make([]ItemRow, 0, 50)
	for rows.Next() {
		var row ItemRow
		if err := rows.Scan(&row.TemplateID, &row.Count, &row.Durability, &row.SlotIndex, &row.EquipSlot); err != nil {
			return nil, fmt.Errorf("scanning item row: %w", err)
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating item rows: %w", err)
	}
	return items, nil
}

// SaveItems заменяет все предметы персонажа снимком в одной транзакции.
func (r *ItemRepository) SaveItems(ctx context.Context, characterID int64, items []ItemRow) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning item save: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM character_items WHERE character_id = $1`, characterID,
	); err != nil {
		return fmt.Errorf("clearing items for character %d: %w", characterID, err)
	}

	batch := &pgx.Batch{}
	for _, row := range items {
		batch.Queue(
			`INSERT INTO character_items (character_id, template_id, count, durability, slot_index, equip_slot)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			characterID, row.TemplateID, row.Count, row.Durability, row.SlotIndex, row.EquipSlot,
		)
	}
	br := tx.SendBatch(ctx, batch)
	for range items {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("inserting item for character %d: %w", characterID, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("closing item batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing item save: %w", err)
	}
	slog.Debug("items saved", "character", characterID, "count", len(items))
	return nil
}
