package state

import (
	"fmt"
	"strings"
)

type RGB struct{ R, G, B uint8 }

var paletteRGB = map[Color]RGB{
	ColorWhite:  {255, 255, 255},
	ColorBlack:  {0, 0, 0},
	ColorRed:    {255, 0, 0},
	ColorGreen:  {0, 255, 0},
	ColorBlue:   {0, 0, 255},
	ColorYellow: {255, 255, 0},
}

// RGB resolves a palette name or a #rrggbb string.
func (c Color) RGB() (RGB, bool) {
	if rgb, ok := paletteRGB[c]; ok {
		return rgb, true
	}
	rgb, err := ParseHex(string(c))
	return rgb, err == nil
}

func ParseHex(s string) (RGB, error) {
	var rgb RGB
	if !strings.HasPrefix(s, "#") || len(s) != 7 {
		return rgb, fmt.Errorf("invalid hex colour %q", s)
	}
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &rgb.R, &rgb.G, &rgb.B); err != nil {
		return rgb, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	return rgb, nil
}
