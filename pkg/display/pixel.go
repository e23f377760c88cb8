// Package display encodes framebuffers into the MK3's display wire
// format: a 16-byte packet header followed by an opcode-tagged command
// stream of run-length-encoded pixel data, sent over the bulk channel.
// The displays are write-only; nothing is ever decoded from them.
package display

// Panel dimensions. Both displays are the same size.
const (
	Width  = 480
	Height = 272
)

// Displays addressable by the codec.
const (
	Left  = 0
	Right = 1
)

// Pixel is one display pixel in the panel's native 16-bit format, a
// non-standard RGB565 variant with bit layout GGGB BBBB RRRR RGGG
// (green split into 3 high + 3 low bits) and rotated colour channels:
// the caller's red is stored in the panel's blue field, green in the
// red field, blue in the green field. The rotation is a hardware
// quirk and is applied on every pixel before bit packing. Pixels are
// little-endian on the wire.
type Pixel uint16

// Pack converts an RGB888 colour to the native pixel format, rotating
// the channels and truncating to 5/6/5 bits.
func Pack(r, g, b uint8) Pixel {
	fr := uint16(g >> 3) // panel red field <- caller green
	fg := uint16(b >> 2) // panel green field <- caller blue
	fb := uint16(r >> 3) // panel blue field <- caller red
	return Pixel((fg>>3)<<13 | fb<<8 | fr<<3 | (fg & 0x07))
}

// Unpack recovers RGB888 from a packed pixel, undoing the channel
// rotation. Exact up to the 5/6/5 truncation of Pack; it exists for
// previews and tests, the hardware never sends pixels back.
func Unpack(p Pixel) (r, g, b uint8) {
	fr := uint8(p>>3) & 0x1F
	fg := uint8((p>>13)&0x07)<<3 | uint8(p)&0x07
	fb := uint8(p>>8) & 0x1F
	return fb << 3, fr << 3, fg << 2
}

// convertRGB888 packs a caller framebuffer (3 bytes per pixel, RGB
// order) into native pixels.
func convertRGB888(frame []byte) []Pixel {
	px := make([]Pixel, len(frame)/3)
	for i := range px {
		px[i] = Pack(frame[i*3], frame[i*3+1], frame[i*3+2])
	}
	return px
}
