package heatmap

import (
	"fmt"
	"math"
)

// RGB is an 8-bit-per-channel color.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

// Hex returns the color as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// GradientStop is a breakpoint of the intensity color ramp.
type GradientStop struct {
	Value float64 `json:"value"`
	Color RGB     `json:"color"`
}

// Gradient maps intensities to colors by linear interpolation between
// ascending stops. Interpolation is per channel in raw RGB space.
type Gradient struct {
	Inactive RGB
	Stops    []GradientStop
}

// InactiveColor is used for muscles with zero intensity.
var InactiveColor = RGB{R: 55, G: 65, B: 81}

var defaultStops = []GradientStop{
	{Value: 0.0, Color: RGB{R: 30, G: 58, B: 138}},
	{Value: 0.25, Color: RGB{R: 59, G: 130, B: 246}},
	{Value: 0.5, Color: RGB{R: 250, G: 204, B: 21}},
	{Value: 0.75, Color: RGB{R: 249, G: 115, B: 22}},
	{Value: 1.0, Color: RGB{R: 220, G: 38, B: 38}},
}

var defaultGradient = Gradient{Inactive: InactiveColor, Stops: defaultStops}

// GradientStops returns a copy of the built-in stop table.
func GradientStops() []GradientStop {
	return append([]GradientStop(nil), defaultStops...)
}

// ColorFor maps an intensity to a color using the built-in gradient.
func ColorFor(intensity float64) RGB {
	return defaultGradient.ColorFor(intensity)
}

// ColorFor returns Inactive for intensities at or below zero. Otherwise it
// finds the first bracket of stops containing the intensity and interpolates.
// Intensities outside the table snap to the nearest end stop.
func (g Gradient) ColorFor(intensity float64) RGB {
	if math.IsNaN(intensity) || intensity <= 0 || len(g.Stops) == 0 {
		return g.Inactive
	}

	first, last := g.Stops[0], g.Stops[len(g.Stops)-1]
	if intensity < first.Value {
		return first.Color
	}

	for i := 0; i+1 < len(g.Stops); i++ {
		lower, upper := g.Stops[i], g.Stops[i+1]
		if intensity < lower.Value || intensity > upper.Value {
			continue
		}
		if lower.Value == upper.Value {
			return lower.Color
		}
		progress := (intensity - lower.Value) / (upper.Value - lower.Value)
		return RGB{
			R: lerpChannel(lower.Color.R, upper.Color.R, progress),
			G: lerpChannel(lower.Color.G, upper.Color.G, progress),
			B: lerpChannel(lower.Color.B, upper.Color.B, progress),
		}
	}
	return last.Color
}

func lerpChannel(from, to uint8, progress float64) uint8 {
	v := math.Round(float64(from) + (float64(to)-float64(from))*progress)
	return uint8(math.Max(0, math.Min(255, v)))
}
