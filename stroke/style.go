package stroke

import "math"

// RGBA is an 8-bit straight-alpha color. It is a plain value type so that
// styles compare with == and serialize deterministically.
type RGBA struct {
	R, G, B, A uint8
}

// Black is the default stroke color.
var Black = RGBA{A: 255}

// Style describes how a stroke is painted: its color, nominal width and
// optional fill. Width is in document units and, for freehand strokes, is
// the maximum width the pressure curve can reach.
type Style struct {
	Color     RGBA
	Width     float64
	Fill      bool
	FillColor RGBA
}

// DefaultStyle returns a 2-unit black stroke with no fill.
func DefaultStyle() Style {
	return Style{Color: Black, Width: 2}
}

// WidthOptions maps normalized input pressure to stroke width.
type WidthOptions struct {
	// MinWidth is the width produced at zero pressure.
	MinWidth float64

	// MaxWidth is the width produced at full pressure.
	MaxWidth float64

	// Exponent shapes the pressure response curve. 1 is linear; values
	// above 1 require firmer pressure for the same width.
	Exponent float64
}

// DefaultWidthOptions returns a gently eased 1..5 unit pressure curve.
func DefaultWidthOptions() WidthOptions {
	return WidthOptions{MinWidth: 1, MaxWidth: 5, Exponent: 1.0}
}

// WidthFor maps a pressure sample to a width. Pressure is clamped to [0, 1];
// NaN pressure maps to the minimum width.
func (o WidthOptions) WidthFor(pressure float64) float64 {
	if math.IsNaN(pressure) || pressure < 0 {
		pressure = 0
	} else if pressure > 1 {
		pressure = 1
	}
	exp := o.Exponent
	if exp <= 0 {
		exp = 1
	}
	return o.MinWidth + (o.MaxWidth-o.MinWidth)*math.Pow(pressure, exp)
}
