package display

import (
	"bytes"
	"fmt"
)

// Command opcodes. Every command is the opcode byte followed by a
// 3-byte big-endian argument; Transmit and Repeat carry pixel payload
// after the argument, Blit and End carry none. The run unit of both
// Transmit and Repeat is a pixel pair (2 pixels, 4 bytes).
const (
	cmdTransmit = 0x00 // arg = number of literal pixel pairs following
	cmdRepeat   = 0x01 // arg = number of repetitions of one pixel pair
	cmdBlit     = 0x03 // arg = 0; applies the drawn buffer to the panel
	cmdEnd      = 0x40 // arg = 0; terminates the packet
)

// headerLen is the fixed packet header size. Layout, big-endian
// multi-byte fields: bytes 0-1 packet type 0x84 0x00, byte 2 display
// id, byte 3 sub-tag 0x60, bytes 4-7 reserved, then x, y, width,
// height as uint16 each.
const headerLen = 16

// blockSize is the alignment of dirty rectangles. Regions are grown
// to 8-pixel block boundaries; the panel shows artifacts on
// narrower partial updates.
const blockSize = 8

// EncodeFull encodes a full-screen RGB888 frame (Width*Height*3
// bytes) into one display packet.
func EncodeFull(displayID uint8, frame []byte) ([]byte, error) {
	return EncodeRegion(displayID, 0, 0, Width, Height, frame)
}

// EncodeRegion encodes an RGB888 sub-rectangle. region holds the
// rectangle's pixels only, row-major, width*height*3 bytes.
func EncodeRegion(displayID uint8, x, y, width, height int, region []byte) ([]byte, error) {
	if err := checkRegion(displayID, x, y, width, height); err != nil {
		return nil, err
	}
	if len(region) != width*height*3 {
		return nil, fmt.Errorf("display: region data must be %d bytes (%dx%d px), got %d",
			width*height*3, width, height, len(region))
	}
	return encode(displayID, x, y, width, height, convertRGB888(region)), nil
}

// EncodeRegionPixels is EncodeRegion for pre-packed native pixels.
func EncodeRegionPixels(displayID uint8, x, y, width, height int, px []Pixel) ([]byte, error) {
	if err := checkRegion(displayID, x, y, width, height); err != nil {
		return nil, err
	}
	if len(px) != width*height {
		return nil, fmt.Errorf("display: expected %d pixels, got %d", width*height, len(px))
	}
	return encode(displayID, x, y, width, height, px), nil
}

// EncodeFill encodes a full-screen solid colour as a single Repeat
// run, the smallest packet the protocol allows for a fill.
func EncodeFill(displayID uint8, r, g, b uint8) ([]byte, error) {
	if displayID != Left && displayID != Right {
		return nil, fmt.Errorf("display: id must be %d or %d, got %d", Left, Right, displayID)
	}
	p := Pack(r, g, b)
	buf := appendHeader(nil, displayID, 0, 0, Width, Height)
	buf = appendCmd(buf, cmdRepeat, Width*Height/2)
	buf = appendPixels(buf, []Pixel{p, p})
	buf = appendCmd(buf, cmdBlit, 0)
	buf = appendCmd(buf, cmdEnd, 0)
	return buf, nil
}

// EncodeDirty compares an RGB888 frame against the previously
// rendered one and encodes only the bounding rectangle of the changed
// pixels, grown to block boundaries. It returns nil when no pixel
// differs, so the caller can skip the USB write entirely. A nil prev
// encodes the full frame.
func EncodeDirty(displayID uint8, frame, prev []byte) ([]byte, error) {
	if len(frame) != Width*Height*3 {
		return nil, fmt.Errorf("display: frame must be %d bytes, got %d", Width*Height*3, len(frame))
	}
	if prev == nil {
		return EncodeFull(displayID, frame)
	}
	if len(prev) != len(frame) {
		return nil, fmt.Errorf("display: previous frame must be %d bytes, got %d", len(frame), len(prev))
	}
	x, y, w, h, dirty := DirtyRect(frame, prev, Width, Height)
	if !dirty {
		return nil, nil
	}
	region := extractRegion(frame, Width, x, y, w, h)
	return EncodeRegionPixels(displayID, x, y, w, h, region)
}

// DirtyRect returns the bounding rectangle of the pixels that differ
// between two RGB888 buffers of identical dimensions, expanded to
// blockSize boundaries. dirty is false when the buffers are equal.
func DirtyRect(cur, prev []byte, width, height int) (x, y, w, h int, dirty bool) {
	minX, minY := width, height
	maxX, maxY := -1, -1
	for row := 0; row < height; row++ {
		start := row * width * 3
		if bytes.Equal(cur[start:start+width*3], prev[start:start+width*3]) {
			continue
		}
		if row < minY {
			minY = row
		}
		maxY = row
		for col := 0; col < width; col++ {
			i := start + col*3
			if cur[i] != prev[i] || cur[i+1] != prev[i+1] || cur[i+2] != prev[i+2] {
				if col < minX {
					minX = col
				}
				if col > maxX {
					maxX = col
				}
			}
		}
	}
	if maxY < 0 {
		return 0, 0, 0, 0, false
	}

	minX = minX / blockSize * blockSize
	minY = minY / blockSize * blockSize
	maxX = min((maxX/blockSize+1)*blockSize, width) - 1
	maxY = min((maxY/blockSize+1)*blockSize, height) - 1
	return minX, minY, maxX - minX + 1, maxY - minY + 1, true
}

func extractRegion(frame []byte, stride, x, y, w, h int) []Pixel {
	px := make([]Pixel, 0, w*h)
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			i := (row*stride + col) * 3
			px = append(px, Pack(frame[i], frame[i+1], frame[i+2]))
		}
	}
	return px
}

func checkRegion(displayID uint8, x, y, width, height int) error {
	if displayID != Left && displayID != Right {
		return fmt.Errorf("display: id must be %d or %d, got %d", Left, Right, displayID)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("display: region %dx%d is empty", width, height)
	}
	if x < 0 || y < 0 || x+width > Width || y+height > Height {
		return fmt.Errorf("display: region %dx%d at (%d,%d) exceeds panel bounds %dx%d",
			width, height, x, y, Width, Height)
	}
	return nil
}

// encode builds header + command stream + Blit + End for one region.
func encode(displayID uint8, x, y, w, h int, px []Pixel) []byte {
	// The run unit is a pixel pair; odd regions are padded with one
	// black pixel, which the panel clips.
	if len(px)%2 == 1 {
		px = append(px, 0)
	}
	buf := make([]byte, 0, headerLen+len(px)*2+3*4+4)
	buf = appendHeader(buf, displayID, x, y, w, h)
	buf = appendRuns(buf, px)
	buf = appendCmd(buf, cmdBlit, 0)
	buf = appendCmd(buf, cmdEnd, 0)
	return buf
}

// appendRuns writes the command stream for an even-length pixel
// slice: runs of two or more identical consecutive pairs collapse
// into a Repeat, everything else accumulates into Transmit spans.
// All-Transmit output would be wire-valid too, just larger.
func appendRuns(buf []byte, px []Pixel) []byte {
	pairs := len(px) / 2
	lit := 0 // first pair of the pending literal span
	for i := 0; i < pairs; {
		run := 1
		for i+run < pairs && px[2*(i+run)] == px[2*i] && px[2*(i+run)+1] == px[2*i+1] {
			run++
		}
		if run < 2 {
			i++
			continue
		}
		buf = appendTransmit(buf, px[2*lit:2*i])
		buf = appendCmd(buf, cmdRepeat, uint32(run))
		buf = appendPixels(buf, px[2*i:2*i+2])
		i += run
		lit = i
	}
	return appendTransmit(buf, px[2*lit:])
}

func appendTransmit(buf []byte, px []Pixel) []byte {
	if len(px) == 0 {
		return buf
	}
	buf = appendCmd(buf, cmdTransmit, uint32(len(px)/2))
	return appendPixels(buf, px)
}

func appendCmd(buf []byte, op byte, arg uint32) []byte {
	return append(buf, op, byte(arg>>16), byte(arg>>8), byte(arg))
}

func appendPixels(buf []byte, px []Pixel) []byte {
	for _, p := range px {
		buf = append(buf, byte(p), byte(p>>8))
	}
	return buf
}

func appendHeader(buf []byte, displayID uint8, x, y, w, h int) []byte {
	buf = append(buf, 0x84, 0x00, displayID, 0x60, 0, 0, 0, 0)
	for _, v := range [4]int{x, y, w, h} {
		buf = append(buf, byte(v>>8), byte(v))
	}
	return buf
}
