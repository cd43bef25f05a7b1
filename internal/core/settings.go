package core

import (
	"slices"

	"github.com/vovakirdan/hypertac-server/internal/config"
)

// Shape is the visual mark a player uses on the board.
type Shape struct {
	Type  string
	Color string
}

var (
	// ShapeTypes lists the shapes a player may choose.
	ShapeTypes = []string{"cross", "circle", "square", "triangle", "diamond", "star"}
	// ShapeColors lists the colors a player may choose.
	ShapeColors = []string{"red", "blue", "green", "yellow", "purple", "orange"}
)

// DefaultShape returns the shape assigned to a fresh roster slot.
func DefaultShape(slot int) Shape {
	return Shape{
		Type:  ShapeTypes[slot%len(ShapeTypes)],
		Color: ShapeColors[slot%len(ShapeColors)],
	}
}

// Valid reports whether both type and color are known.
func (s Shape) Valid() bool {
	return slices.Contains(ShapeTypes, s.Type) && slices.Contains(ShapeColors, s.Color)
}

// Settings are the per-room game parameters.
type Settings struct {
	DimensionCount int
	SideLength     int
	// Shapes is indexed by roster slot. It may be longer than the roster:
	// shapes of departed players are kept at the tail.
	Shapes []Shape
}

func defaultSettings(limits config.GameConfig) Settings {
	return Settings{
		DimensionCount: limits.DefaultDimensions,
		SideLength:     limits.DefaultSideLength,
	}
}

func (s Settings) clone() Settings {
	s.Shapes = slices.Clone(s.Shapes)
	return s
}

// SettingsPatch is a partial settings update; nil fields are left unchanged.
type SettingsPatch struct {
	DimensionCount *int
	SideLength     *int
}

// Empty reports whether the patch changes nothing.
func (p SettingsPatch) Empty() bool {
	return p.DimensionCount == nil && p.SideLength == nil
}

// SettingsDelta is broadcast after a settings change; only changed fields are set.
type SettingsDelta struct {
	DimensionCount *int
	SideLength     *int
	Shapes         []Shape
}
