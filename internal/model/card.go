package model

// CardID uniquely identifies a card within a room
type CardID string

// Shape is one of the fixed symbols printed on cards
type Shape string

const (
	ShapeCircle   Shape = "circle"
	ShapeSquare   Shape = "square"
	ShapeTriangle Shape = "triangle"
	ShapeDiamond  Shape = "diamond"
	ShapeStar     Shape = "star"
	ShapeHeart    Shape = "heart"
	ShapeHexagon  Shape = "hexagon"
	ShapePentagon Shape = "pentagon"
)

// Shapes lists every card symbol in a stable order
func Shapes() []Shape {
	return []Shape{
		ShapeCircle, ShapeSquare, ShapeTriangle, ShapeDiamond,
		ShapeStar, ShapeHeart, ShapeHexagon, ShapePentagon,
	}
}

// Card is a single game card. Regular cards carry a shape and a category to
// name examples of. Wild cards carry no category; instead they declare two
// shapes as temporarily equivalent for match detection.
// Cards are immutable once drawn.
type Card struct {
	ID         CardID
	Shape      Shape
	Category   string
	IsWild     bool
	WildShapes [2]Shape // set only when IsWild
}

// WildRule is the active wild-card effect: the pair of shapes currently
// treated as matching each other.
type WildRule struct {
	CardID CardID
	Shapes [2]Shape
}

// Equates reports whether the rule makes a and b equivalent.
// Identical shapes match regardless of any rule.
func (r *WildRule) Equates(a, b Shape) bool {
	if a == b {
		return true
	}
	if r == nil {
		return false
	}
	return (a == r.Shapes[0] && b == r.Shapes[1]) || (a == r.Shapes[1] && b == r.Shapes[0])
}
