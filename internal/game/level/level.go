// Package level реализует таблицу опыта и прогресс уровня персонажа.
package level

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/rpgkit/internal/config"
)

// ErrNegativeExperience — попытка начислить отрицательный опыт.
var ErrNegativeExperience = errors.New("experience amount must be >= 0")

// Table — таблица накопленного опыта по уровням.
//
// thresholds[i] — суммарный опыт, необходимый для уровня i+1:
// thresholds[0] всегда 0 (уровень 1). Таблица строится из данных один
// раз и далее неизменяема.
type Table struct {
	thresholds []int64
}

// NewTable строит таблицу уровней.
//
// Parameters:
//   - thresholds: накопленный опыт на каждый уровень, начиная с первого;
//     первый элемент обязан быть 0, далее строго возрастает
func NewTable(thresholds []int64) (*Table, error) {
	if len(thresholds) == 0 {
		return nil, fmt.Errorf("level table cannot be empty")
	}
	if thresholds[0] != 0 {
		return nil, fmt.Errorf("level 1 threshold must be 0, got %d", thresholds[0])
	}
	for i := 1; i < len(thresholds); i++ {
		if thresholds[i] <= thresholds[i-1] {
			return nil, fmt.Errorf("level %d threshold %d not above level %d threshold %d",
				i+1, thresholds[i], i, thresholds[i-1])
		}
	}
	t := &Table{thresholds: make([]int64, len(thresholds))}
	copy(t.thresholds, thresholds)
	return t, nil
}

// MaxLevel возвращает максимальный уровень таблицы.
func (t *Table) MaxLevel() int32 {
	return int32(len(t.thresholds))
}

// ExpForLevel возвращает накопленный опыт, необходимый для уровня.
// Уровни ниже первого дают 0, выше максимального — порог максимального.
func (t *Table) ExpForLevel(level int32) int64 {
	if level <= 1 {
		return 0
	}
	if level > t.MaxLevel() {
		level = t.MaxLevel()
	}
	return t.thresholds[level-1]
}

// LevelFor возвращает уровень, соответствующий накопленному опыту.
func (t *Table) LevelFor(exp int64) int32 {
	level := int32(1)
	for level < t.MaxLevel() {
		if t.thresholds[level] > exp {
			break
		}
		level++
	}
	return level
}

// Progress — текущий уровень и накопленный опыт персонажа.
//
// Не потокобезопасен: доступ сериализует хост.
type Progress struct {
	table *Table
	exp   int64
	level int32
}

// NewProgress создаёт прогресс первого уровня с нулевым опытом.
func NewProgress(table *Table) (*Progress, error) {
	if table == nil {
		return nil, fmt.Errorf("level table cannot be nil")
	}
	return &Progress{table: table, level: 1}, nil
}

// RestoreProgress восстанавливает прогресс из сохранённого опыта.
func RestoreProgress(table *Table, exp int64) (*Progress, error) {
	if table == nil {
		return nil, fmt.Errorf("level table cannot be nil")
	}
	if exp < 0 {
		return nil, fmt.Errorf("saved experience must be >= 0, got %d", exp)
	}
	return &Progress{table: table, exp: exp, level: table.LevelFor(exp)}, nil
}

// AddExp начисляет опыт с учётом рейта и возвращает число полученных
// уровней (0, если уровень не изменился).
//
// Returns:
//   - int32: сколько уровней получено за это начисление
//   - error: ErrNegativeExperience
func (p *Progress) AddExp(amount int64, rates *config.Rates) (int32, error) {
	if amount < 0 {
		return 0, fmt.Errorf("%w: got %d", ErrNegativeExperience, amount)
	}
	if rates != nil {
		amount = int64(float64(amount) * rates.ExperienceMultiplier)
	}

	p.exp += amount
	newLevel := p.table.LevelFor(p.exp)
	gained := newLevel - p.level
	if gained > 0 {
		slog.Debug("level up", "from", p.level, "to", newLevel, "exp", p.exp)
		p.level = newLevel
	}
	return gained, nil
}

// Level возвращает текущий уровень.
func (p *Progress) Level() int32 {
	return p.level
}

// Exp возвращает накопленный опыт.
func (p *Progress) Exp() int64 {
	return p.exp
}

// ExpToNext возвращает, сколько опыта осталось до следующего уровня
// (0 на максимальном уровне).
func (p *Progress) ExpToNext() int64 {
	if p.level >= p.table.MaxLevel() {
		return 0
	}
	return p.table.ExpForLevel(p.level+1) - p.exp
}
