package moonclock

import (
	"fmt"
	"image/color"
)

// Field identifies one independently redrawn region of the display.
type Field uint8

const (
	Time Field = iota
	Date
	LastSync
	MoonIllumination
	NextFullMoon

	numFields
)

// Fields lists every field in render order.
var Fields = [numFields]Field{Time, Date, LastSync, MoonIllumination, NextFullMoon}

func (f Field) String() string {
	switch f {
	case Time:
		return "time"
	case Date:
		return "date"
	case LastSync:
		return "last-sync"
	case MoonIllumination:
		return "moon-illumination"
	case NextFullMoon:
		return "next-full-moon"
	}
	return fmt.Sprintf("field(%d)", uint8(f))
}

// Placement is the fixed origin (top-left of the text line) and foreground
// color of a field.
type Placement struct {
	X, Y  int16
	Color color.Color
}

// Layout is the static screen configuration shared by all fields.
type Layout struct {
	Background color.Color
	Fields     [numFields]Placement
}

// Placement returns the placement of f.
func (l *Layout) Placement(f Field) Placement {
	return l.Fields[f]
}

// DefaultLayout arranges the fields in two columns on a 256x64 panel for a
// 7x13 monospace face.
func DefaultLayout() Layout {
	return Layout{
		Background: color.Gray{Y: 0},
		Fields: [numFields]Placement{
			Time:             {X: 0, Y: 2, Color: color.Gray{Y: 0xFF}},
			Date:             {X: 0, Y: 22, Color: color.Gray{Y: 0xBB}},
			LastSync:         {X: 0, Y: 44, Color: color.Gray{Y: 0x66}},
			MoonIllumination: {X: 128, Y: 2, Color: color.Gray{Y: 0xDD}},
			NextFullMoon:     {X: 128, Y: 22, Color: color.Gray{Y: 0x99}},
		},
	}
}

// FieldState is the text last drawn for a field and the latest candidate.
type FieldState struct {
	Previous string
	Current  string
}
