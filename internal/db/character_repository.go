package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CharacterRow — плоский снимок персонажа для сохранения.
type CharacterRow struct {
	ID         int64
	Name       string
	Experience int64
	Unlocked   []int32 // открытые узлы дерева развития
	Skills     []int32 // изученные навыки
}

// CharacterRepository управляет персонажами в БД.
type CharacterRepository struct {
	db *pgxpool.Pool
}

// NewCharacterRepository создаёт новый CharacterRepository.
func NewCharacterRepository(db *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{db: db}
}

// Create заводит персонажа и возвращает его ID.
func (r *CharacterRepository) Create(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO characters (name) VALUES ($1) RETURNING character_id`,
		name,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating character %q: %w", name, err)
	}
	slog.Info("character created", "id", id, "name", name)
	return id, nil
}

// LoadByName загружает персонажа по имени.
// Возвращает nil если персонаж не найден (не ошибка).
func (r *CharacterRepository) LoadByName(ctx context.Context, name string) (*CharacterRow, error) {
	var row CharacterRow
	err := r.db.QueryRow(ctx,
		`SELECT character_id, name, experience, unlocked, skills
		 FROM characters WHERE name = $1`, name,
	).Scan(&row.ID, &row.Name, &row.Experience, &row.Unlocked, &row.Skills)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying character %q: %w", name, err)
	}
	return &row, nil
}

// Save сохраняет снимок персонажа.
func (r *CharacterRepository) Save(ctx context.Context, row *CharacterRow) error {
	if row == nil {
		return fmt.Errorf("character row cannot be nil")
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE characters
		 SET experience = $1, unlocked = $2, skills = $3, updated_at = now()
		 WHERE character_id = $4`,
		row.Experience, row.Unlocked, row.Skills, row.ID,
	)
	if err != nil {
		return fmt.Errorf("saving character %d: %w", row.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("saving character %d: not found", row.ID)
	}
	return nil
}
