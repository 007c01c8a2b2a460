package deck

import "github.com/carriee-liuu/anomia-go/internal/model"

// categoriesByShape is the built-in card catalog: each shape has a pool of
// categories it can be printed with.
var categoriesByShape = map[model.Shape][]string{
	model.ShapeCircle:   {"Pizza", "Wheel", "Coin", "Button", "Clock"},
	model.ShapeSquare:   {"Box", "Window", "Book", "Table", "Picture"},
	model.ShapeTriangle: {"Pyramid", "Roof", "Flag", "Slice", "Mountain"},
	model.ShapeDiamond:  {"Ring", "Crystal", "Baseball", "Kite", "Gem"},
	model.ShapeStar:     {"Flag", "Award", "Flower", "Snowflake", "Compass"},
	model.ShapeHeart:    {"Valentine", "Organ", "Emoji", "Card", "Candy"},
	model.ShapeHexagon:  {"Honeycomb", "Nut", "Crystal", "Stop Sign", "Bolt"},
	model.ShapePentagon: {"Building", "Shield", "Flower", "Star", "Coin"},
}

// Categories returns the category pool for a shape
func Categories(shape model.Shape) []string {
	return categoriesByShape[shape]
}
