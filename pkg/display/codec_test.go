package display

import (
	"bytes"
	"testing"
)

func TestPackRotatesChannels(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    Pixel
	}{
		// Each pure input colour must land in the rotated field.
		{"red to blue field", 255, 0, 0, 0x1F << 8},
		{"green to red field", 0, 255, 0, 0x1F << 3},
		{"blue to green field", 0, 0, 255, 0x7<<13 | 0x7},
		{"black", 0, 0, 0, 0},
		{"white", 255, 255, 255, 0xFFFF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Pack(tt.r, tt.g, tt.b); got != tt.want {
				t.Fatalf("Pack(%d,%d,%d) = %#04x, want %#04x", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	// Exact round trips for values on the 5/6/5 grid after rotation:
	// red and green keep 5 bits, blue keeps 6.
	for r := 0; r < 256; r += 8 {
		for g := 0; g < 256; g += 64 {
			for b := 0; b < 256; b += 4 {
				gr, gg, gb := Unpack(Pack(uint8(r), uint8(g), uint8(b)))
				if int(gr) != r || int(gg) != g || int(gb) != b {
					t.Fatalf("round trip (%d,%d,%d) -> (%d,%d,%d)", r, g, b, gr, gg, gb)
				}
			}
		}
	}
}

// decodePacket walks a display packet with an independent reading of
// the wire format and returns the header fields and the pixels the
// commands would draw.
func decodePacket(t *testing.T, pkt []byte) (id uint8, x, y, w, h int, px []Pixel) {
	t.Helper()
	if len(pkt) < headerLen {
		t.Fatalf("packet too short: %d bytes", len(pkt))
	}
	if pkt[0] != 0x84 || pkt[1] != 0x00 || pkt[3] != 0x60 {
		t.Fatalf("bad header: % x", pkt[:4])
	}
	id = pkt[2]
	be16 := func(i int) int { return int(pkt[i])<<8 | int(pkt[i+1]) }
	x, y, w, h = be16(8), be16(10), be16(12), be16(14)

	sawBlit := false
	i := headerLen
	for {
		if i+4 > len(pkt) {
			t.Fatalf("packet ends mid-command at %d", i)
		}
		op := pkt[i]
		arg := int(pkt[i+1])<<16 | int(pkt[i+2])<<8 | int(pkt[i+3])
		i += 4
		switch op {
		case cmdTransmit:
			for n := 0; n < arg*2; n++ {
				px = append(px, Pixel(uint16(pkt[i])|uint16(pkt[i+1])<<8))
				i += 2
			}
		case cmdRepeat:
			pair := [2]Pixel{
				Pixel(uint16(pkt[i]) | uint16(pkt[i+1])<<8),
				Pixel(uint16(pkt[i+2]) | uint16(pkt[i+3])<<8),
			}
			i += 4
			for n := 0; n < arg; n++ {
				px = append(px, pair[0], pair[1])
			}
		case cmdBlit:
			sawBlit = true
		case cmdEnd:
			if !sawBlit {
				t.Fatal("End before Blit")
			}
			if i != len(pkt) {
				t.Fatalf("%d trailing bytes after End", len(pkt)-i)
			}
			return
		default:
			t.Fatalf("unknown opcode %#02x at %d", op, i-4)
		}
	}
}

func solidFrame(r, g, b uint8) []byte {
	frame := make([]byte, Width*Height*3)
	for i := 0; i < len(frame); i += 3 {
		frame[i], frame[i+1], frame[i+2] = r, g, b
	}
	return frame
}

func TestEncodeFullUniformCollapsesToOneRepeat(t *testing.T) {
	pkt, err := EncodeFull(Right, solidFrame(10, 20, 30))
	if err != nil {
		t.Fatal(err)
	}

	id, x, y, w, h, px := decodePacket(t, pkt)
	if id != Right || x != 0 || y != 0 || w != Width || h != Height {
		t.Fatalf("header = id %d region %dx%d at (%d,%d)", id, w, h, x, y)
	}
	if len(px) != Width*Height {
		t.Fatalf("decoded %d pixels, want %d", len(px), Width*Height)
	}
	want := Pack(10, 20, 30)
	for i, p := range px {
		if p != want {
			t.Fatalf("pixel %d = %#04x, want %#04x", i, p, want)
		}
	}

	// A uniform frame is one Repeat run: header + 2 commands with one
	// pixel pair + Blit + End.
	if wantLen := headerLen + 4 + 4 + 4 + 4; len(pkt) != wantLen {
		t.Fatalf("packet is %d bytes, want %d", len(pkt), wantLen)
	}
	if pkt[headerLen] != cmdRepeat {
		t.Fatalf("first command %#02x, want Repeat", pkt[headerLen])
	}
	if arg := int(pkt[headerLen+1])<<16 | int(pkt[headerLen+2])<<8 | int(pkt[headerLen+3]); arg != Width*Height/2 {
		t.Fatalf("repeat count %d, want %d", arg, Width*Height/2)
	}
}

func TestEncodeRegionRoundTrip(t *testing.T) {
	const w, h = 16, 8
	region := make([]byte, w*h*3)
	for i := range region {
		region[i] = byte(i * 7)
	}

	pkt, err := EncodeRegion(Left, 32, 64, w, h, region)
	if err != nil {
		t.Fatal(err)
	}
	id, x, y, gw, gh, px := decodePacket(t, pkt)
	if id != Left || x != 32 || y != 64 || gw != w || gh != h {
		t.Fatalf("header = id %d region %dx%d at (%d,%d)", id, gw, gh, x, y)
	}
	for i := 0; i < w*h; i++ {
		want := Pack(region[i*3], region[i*3+1], region[i*3+2])
		if px[i] != want {
			t.Fatalf("pixel %d = %#04x, want %#04x", i, px[i], want)
		}
	}
}

func TestEncodeOddPixelCountPadsWithBlack(t *testing.T) {
	px := []Pixel{Pack(200, 0, 0), Pack(0, 200, 0), Pack(0, 0, 200)}
	pkt, err := EncodeRegionPixels(Left, 0, 0, 3, 1, px)
	if err != nil {
		t.Fatal(err)
	}
	_, _, _, _, _, got := decodePacket(t, pkt)
	if len(got) != 4 {
		t.Fatalf("decoded %d pixels, want 4", len(got))
	}
	if got[3] != 0 {
		t.Fatalf("padding pixel = %#04x, want black", got[3])
	}
}

func TestEncodeRegionValidation(t *testing.T) {
	region := make([]byte, 8*8*3)
	tests := []struct {
		name       string
		id         uint8
		x, y, w, h int
		data       []byte
	}{
		{"bad display id", 2, 0, 0, 8, 8, region},
		{"negative origin", Left, -8, 0, 8, 8, region},
		{"exceeds width", Left, Width - 4, 0, 8, 8, region},
		{"exceeds height", Left, 0, Height - 4, 8, 8, region},
		{"empty region", Left, 0, 0, 0, 8, nil},
		{"wrong data size", Left, 0, 0, 8, 8, region[:10]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := EncodeRegion(tt.id, tt.x, tt.y, tt.w, tt.h, tt.data); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestEncodeDirty(t *testing.T) {
	prev := solidFrame(0, 0, 0)

	t.Run("no change is no packet", func(t *testing.T) {
		pkt, err := EncodeDirty(Left, prev, prev)
		if err != nil {
			t.Fatal(err)
		}
		if pkt != nil {
			t.Fatalf("got %d byte packet for identical frames", len(pkt))
		}
	})

	t.Run("nil previous sends full frame", func(t *testing.T) {
		pkt, err := EncodeDirty(Left, prev, nil)
		if err != nil {
			t.Fatal(err)
		}
		_, _, _, w, h, _ := decodePacket(t, pkt)
		if w != Width || h != Height {
			t.Fatalf("region %dx%d, want full frame", w, h)
		}
	})

	t.Run("changes bound to aligned rectangle", func(t *testing.T) {
		frame := solidFrame(0, 0, 0)
		set := func(x, y int) {
			i := (y*Width + x) * 3
			frame[i], frame[i+1], frame[i+2] = 255, 255, 255
		}
		set(100, 50)
		set(110, 57)

		pkt, err := EncodeDirty(Left, frame, prev)
		if err != nil {
			t.Fatal(err)
		}
		_, x, y, w, h, px := decodePacket(t, pkt)
		if x != 96 || y != 48 || w != 16 || h != 16 {
			t.Fatalf("region %dx%d at (%d,%d), want 16x16 at (96,48)", w, h, x, y)
		}

		white := Pack(255, 255, 255)
		for row := 0; row < h; row++ {
			for col := 0; col < w; col++ {
				want := Pixel(0)
				if (x+col == 100 && y+row == 50) || (x+col == 110 && y+row == 57) {
					want = white
				}
				if got := px[row*w+col]; got != want {
					t.Fatalf("pixel (%d,%d) = %#04x, want %#04x", x+col, y+row, got, want)
				}
			}
		}
	})

	t.Run("bad frame size", func(t *testing.T) {
		if _, err := EncodeDirty(Left, make([]byte, 100), nil); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestDirtyRectAlignsToBlocks(t *testing.T) {
	const w, h = 32, 24
	prev := make([]byte, w*h*3)
	cur := make([]byte, w*h*3)
	cur[(5*w+9)*3] = 1 // single changed pixel at (9,5)

	x, y, gw, gh, dirty := DirtyRect(cur, prev, w, h)
	if !dirty {
		t.Fatal("change not detected")
	}
	if x != 8 || y != 0 || gw != 8 || gh != 8 {
		t.Fatalf("rect %dx%d at (%d,%d), want 8x8 at (8,0)", gw, gh, x, y)
	}

	if _, _, _, _, dirty := DirtyRect(prev, prev, w, h); dirty {
		t.Fatal("identical buffers reported dirty")
	}
}

func TestEncodeFillMatchesEncodeFull(t *testing.T) {
	fill, err := EncodeFill(Left, 40, 80, 120)
	if err != nil {
		t.Fatal(err)
	}
	full, err := EncodeFull(Left, solidFrame(40, 80, 120))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(fill, full) {
		t.Fatalf("fill and uniform full frame disagree:\n% x\n% x", fill, full)
	}
}
