// Package craft реализует создание предметов по рецептам.
package craft

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/udisondev/rpgkit/internal/config"
	"github.com/udisondev/rpgkit/internal/model"
)

var (
	// ErrUnknownRecipe — рецепт не зарегистрирован.
	ErrUnknownRecipe = errors.New("unknown recipe")
	// ErrDuplicateRecipe — рецепт с таким ID уже зарегистрирован.
	ErrDuplicateRecipe = errors.New("duplicate recipe")
	// ErrMissingMaterials — в инвентаре не хватает ингредиентов.
	ErrMissingMaterials = errors.New("missing materials")
)

// ItemCreator создаёт экземпляры предметов (внедряется сессией).
type ItemCreator interface {
	CreateItem(templateID int32, count int32) (*model.ItemInstance, error)
}

// Ingredient — позиция рецепта: шаблон и количество.
type Ingredient struct {
	TemplateID int32
	Count      int32
}

// Recipe — неизменяемое описание рецепта.
//
// SuccessRate в [0, 1]; материалы расходуются до проверки успеха, так
// что неудачная попытка теряет ингредиенты.
type Recipe struct {
	ID          int32
	Name        string
	SuccessRate float64
	Materials   []Ingredient
	Products    []Ingredient
}

// Validate проверяет согласованность рецепта.
func (r *Recipe) Validate() error {
	if r.ID <= 0 {
		return fmt.Errorf("recipe id must be > 0, got %d", r.ID)
	}
	if r.Name == "" {
		return fmt.Errorf("recipe %d: name cannot be empty", r.ID)
	}
	if r.SuccessRate < 0 || r.SuccessRate > 1 {
		return fmt.Errorf("recipe %d: success rate must be in [0, 1], got %v", r.ID, r.SuccessRate)
	}
	if len(r.Materials) == 0 {
		return fmt.Errorf("recipe %d: at least one material required", r.ID)
	}
	if len(r.Products) == 0 {
		return fmt.Errorf("recipe %d: at least one product required", r.ID)
	}
	for _, ing := range append(append([]Ingredient{}, r.Materials...), r.Products...) {
		if ing.TemplateID <= 0 || ing.Count <= 0 {
			return fmt.Errorf("recipe %d: invalid ingredient {%d, %d}", r.ID, ing.TemplateID, ing.Count)
		}
	}
	return nil
}

// Result — итог одной попытки крафта.
type Result struct {
	Success bool
	// Items — созданные предметы. Непустой только при успехе.
	Items []*model.ItemInstance
	// Residual — часть продукции, не поместившаяся в инвентарь
	// (остаётся в Items с уменьшенным счётчиком у последнего стека).
	Residual int32
}

// Book — реестр известных рецептов.
type Book struct {
	recipes map[int32]*Recipe
}

// NewBook строит реестр рецептов.
func NewBook(recipes []*Recipe) (*Book, error) {
	b := &Book{recipes: make(map[int32]*Recipe, len(recipes))}
	for _, r := range recipes {
		if r == nil {
			return nil, fmt.Errorf("recipe cannot be nil")
		}
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, ok := b.recipes[r.ID]; ok {
			return nil, fmt.Errorf("recipe %d: %w", r.ID, ErrDuplicateRecipe)
		}
		b.recipes[r.ID] = r
	}
	return b, nil
}

// Get возвращает рецепт по ID.
func (b *Book) Get(id int32) (*Recipe, bool) {
	r, ok := b.recipes[id]
	return r, ok
}

// Len возвращает число рецептов.
func (b *Book) Len() int {
	return len(b.recipes)
}

// All возвращает все рецепты (порядок не определён).
func (b *Book) All() []*Recipe {
	result := make([]*Recipe, 0, len(b.recipes))
	for _, r := range b.recipes {
		result = append(result, r)
	}
	return result
}

// Controller выполняет попытки крафта над инвентарём персонажа.
//
// Не потокобезопасен: доступ сериализует хост.
type Controller struct {
	book    *Book
	creator ItemCreator
}

// NewController создаёт контроллер крафта.
func NewController(book *Book, creator ItemCreator) (*Controller, error) {
	if book == nil {
		return nil, fmt.Errorf("recipe book cannot be nil")
	}
	if creator == nil {
		return nil, fmt.Errorf("item creator cannot be nil")
	}
	return &Controller{book: book, creator: creator}, nil
}

// Craft выполняет одну попытку крафта.
//
// Порядок: проверка всех материалов → расход материалов → бросок успеха
// (SuccessRate × rates.CraftChanceMultiplier) → создание продукции и
// добавление в инвентарь. Материалы расходуются до броска: неудача
// теряет их.
//
// Returns:
//   - *Result: итог попытки; при неудачном броске Success=false без ошибки
//   - error: ErrUnknownRecipe, ErrMissingMaterials; ошибки создания предметов
func (c *Controller) Craft(rng *rand.Rand, inv *model.Inventory, recipeID int32, rates *config.Rates) (*Result, error) {
	if inv == nil {
		return nil, fmt.Errorf("inventory cannot be nil")
	}
	recipe, ok := c.book.Get(recipeID)
	if !ok {
		return nil, fmt.Errorf("recipe %d: %w", recipeID, ErrUnknownRecipe)
	}

	for _, mat := range recipe.Materials {
		if !inv.HasQuantity(mat.TemplateID, mat.Count) {
			return nil, fmt.Errorf("recipe %d: template %d x%d: %w",
				recipeID, mat.TemplateID, mat.Count, ErrMissingMaterials)
		}
	}

	for _, mat := range recipe.Materials {
		if err := inv.RemoveByTemplate(mat.TemplateID, mat.Count); err != nil {
			return nil, fmt.Errorf("consuming material %d: %w", mat.TemplateID, err)
		}
	}

	chance := recipe.SuccessRate
	if rates != nil {
		chance *= rates.CraftChanceMultiplier
	}
	if chance < 1 && rng.Float64() >= chance {
		slog.Debug("craft failed", "recipe", recipeID, "chance", chance)
		return &Result{}, nil
	}

	result := &Result{Success: true}
	for _, prod := range recipe.Products {
		inst, err := c.creator.CreateItem(prod.TemplateID, prod.Count)
		if err != nil {
			return nil, fmt.Errorf("creating craft product %d: %w", prod.TemplateID, err)
		}
		residual, err := inv.Add(inst)
		if err != nil {
			return nil, fmt.Errorf("adding craft product %d: %w", prod.TemplateID, err)
		}
		result.Residual += residual
		result.Items = append(result.Items, inst)
	}

	slog.Debug("craft success", "recipe", recipeID, "products", len(result.Items))
	return result, nil
}
