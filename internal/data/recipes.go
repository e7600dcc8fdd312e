package data

import (
	"log/slog"

	"github.com/udisondev/rpgkit/internal/game/craft"
)

type recipesDoc struct {
	Recipes []recipeDoc `yaml:"recipes"`
}

type recipeDoc struct {
	ID          int32           `yaml:"id"`
	Name        string          `yaml:"name"`
	SuccessRate float64         `yaml:"success_rate"`
	Materials   []ingredientDoc `yaml:"materials"`
	Products    []ingredientDoc `yaml:"products"`
}

type ingredientDoc struct {
	Item  int32 `yaml:"item"`
	Count int32 `yaml:"count"`
}

func parseIngredients(docs []ingredientDoc) []craft.Ingredient {
	result := make([]craft.Ingredient, 0, len(docs))
	for _, d := range docs {
		count := d.Count
		if count == 0 {
			count = 1
		}
		result = append(result, craft.Ingredient{TemplateID: d.Item, Count: count})
	}
	return result
}

func loadRecipes(path string) (*craft.Book, error) {
	var doc recipesDoc
	if err := readDoc(path, &doc); err != nil {
		return nil, err
	}

	recipes := make([]*craft.Recipe, 0, len(doc.Recipes))
	for _, rd := range doc.Recipes {
		recipes = append(recipes, &craft.Recipe{
			ID:          rd.ID,
			Name:        rd.Name,
			SuccessRate: rd.SuccessRate,
			Materials:   parseIngredients(rd.Materials),
			Products:    parseIngredients(rd.Products),
		})
	}

	book, err := craft.NewBook(recipes)
	if err != nil {
		return nil, err
	}
	slog.Info("loaded recipes", "count", book.Len())
	return book, nil
}
