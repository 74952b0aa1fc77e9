package ui

import (
	"image/color"

	"LocalBoard/internal/state"
)

func nrgba(c state.RGB) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// toColor resolves a path colour. Anything unknown draws in fallback.
func toColor(c state.Color, fallback color.Color) color.Color {
	if rgb, ok := c.RGB(); ok {
		return nrgba(rgb)
	}
	return fallback
}
