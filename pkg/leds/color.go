// Package leds buffers the desired state of every controllable LED on
// the MK3 and serializes it into the device's two fixed-layout output
// reports. Setters only mutate the buffer; nothing reaches the wire
// until the owning facade flushes.
package leds

// Color selects an entry of the hardware colour palette plus a
// brightness tier. Bright is an illumination mode the firmware applies
// on its own; it is not an RGB scale factor.
type Color struct {
	Index  uint8 // palette index 0-16
	Bright bool
}

// palette is the 17-colour grid the pad firmware can display.
var palette = [17][3]uint8{
	{255, 0, 0},     // red
	{255, 165, 0},   // orange
	{255, 200, 0},   // amber
	{255, 255, 0},   // yellow
	{128, 255, 0},   // lime
	{0, 255, 0},     // green
	{0, 255, 128},   // spring
	{0, 255, 255},   // cyan
	{0, 128, 255},   // azure
	{0, 0, 255},     // blue
	{128, 0, 255},   // purple
	{255, 0, 255},   // magenta
	{255, 0, 128},   // pink
	{255, 128, 255}, // rose
	{64, 0, 128},    // violet
	{128, 128, 128}, // gray
	{255, 255, 255}, // white
}

// FromRGB maps an RGB888 colour to the nearest palette entry. Bright
// is chosen from the strongest component so pure primaries come out
// bright.
func FromRGB(r, g, b uint8) Color {
	if r == 0 && g == 0 && b == 0 {
		return Color{}
	}
	best, bestDist := 0, int(^uint(0)>>1)
	for i, p := range palette {
		dr := int(r) - int(p[0])
		dg := int(g) - int(p[1])
		db := int(b) - int(p[2])
		if d := dr*dr + dg*dg + db*db; d < bestDist {
			best, bestDist = i, d
		}
	}
	return Color{Index: uint8(best), Bright: maxComponent(r, g, b) > 127}
}

// RGB returns the palette colour of c, halved for the dim tier. For
// previews only; the wire carries ledValue, not RGB.
func (c Color) RGB() (r, g, b uint8) {
	if c.Index == 0 && !c.Bright {
		return 0, 0, 0
	}
	p := palette[c.Index%17]
	if c.Bright {
		return p[0], p[1], p[2]
	}
	return p[0] / 2, p[1] / 2, p[2] / 2
}

// ledValue converts the palette index and tier to the byte the
// firmware expects in RGB LED slots.
func (c Color) ledValue() uint8 {
	if c.Index == 0 && !c.Bright {
		return 0
	}
	base := (int(c.Index)%17 + 1) * 2
	if !c.Bright {
		base--
	}
	v := base*2 + 2
	if v > 66 {
		v += 4
	}
	return uint8(v)
}

// brightness converts the colour to the scalar value used by the
// single-colour button LEDs, which know only an intensity 0-127.
func (c Color) brightness() uint8 {
	r, g, b := c.RGB()
	return maxComponent(r, g, b) >> 1
}

// Convenience palette entries.
func Red(bright bool) Color     { return Color{Index: 0, Bright: bright} }
func Orange(bright bool) Color  { return Color{Index: 1, Bright: bright} }
func Yellow(bright bool) Color  { return Color{Index: 3, Bright: bright} }
func Green(bright bool) Color   { return Color{Index: 5, Bright: bright} }
func Cyan(bright bool) Color    { return Color{Index: 7, Bright: bright} }
func Blue(bright bool) Color    { return Color{Index: 9, Bright: bright} }
func Purple(bright bool) Color  { return Color{Index: 10, Bright: bright} }
func Magenta(bright bool) Color { return Color{Index: 11, Bright: bright} }
func White(bright bool) Color   { return Color{Index: 16, Bright: bright} }
func Black() Color              { return Color{} }

func maxComponent(r, g, b uint8) uint8 {
	m := r
	if g > m {
		m = g
	}
	if b > m {
		m = b
	}
	return m
}
