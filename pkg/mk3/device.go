// Package mk3 is the top-level handle for the Native Instruments
// Maschine MK3 controller. A Device owns the USB transport, an input
// decoder that turns raw reports into events, an LED buffer flushed on
// demand, and per-display frame caches for differential updates.
//
// All methods are safe for concurrent use; a single lock serializes
// access to the transport and the buffers behind it.
package mk3

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/srose-io/maschine3-hal/pkg/display"
	"github.com/srose-io/maschine3-hal/pkg/input"
	"github.com/srose-io/maschine3-hal/pkg/leds"
	"github.com/srose-io/maschine3-hal/pkg/usb"
)

const (
	// pollTimeout bounds a PollInput read. The controller only sends
	// reports on state changes, so an expiry is the common idle case.
	pollTimeout = 100 * time.Millisecond

	// fastPollTimeout bounds a PollInputFast read for latency-critical
	// loops that have their own scheduling.
	fastPollTimeout = time.Millisecond

	// writeTimeout bounds an LED report write.
	writeTimeout = 250 * time.Millisecond

	// bulkBaseTimeout is the fixed part of a display write deadline;
	// the variable part scales with the packet size.
	bulkBaseTimeout = 100 * time.Millisecond
)

// Device is an open MK3 controller.
type Device struct {
	// PollTimeout and FastPollTimeout override the default poll
	// windows when non-zero. Set them before sharing the Device
	// between goroutines.
	PollTimeout     time.Duration
	FastPollTimeout time.Duration

	mu     sync.Mutex
	tr     usb.Transport
	closed bool

	dec   input.Decoder
	leds  leds.State
	frame [2][]byte // last rendered RGB888 frame per display, nil = unknown
}

// Open claims the first MK3 on the bus over raw USB, with both the
// HID report channel and the bulk display channel.
func Open() (*Device, error) {
	tr, err := usb.OpenDirect(VendorID, ProductID)
	if err != nil {
		return nil, err
	}
	slog.Info("mk3 opened", "product", tr.String(), "display", tr.BulkAvailable())
	return NewDevice(tr), nil
}

// OpenHID claims the first MK3 through the platform HID layer.
// Display writes are unavailable on this path; everything else works.
func OpenHID() (*Device, error) {
	tr, err := usb.OpenHID(VendorID, ProductID)
	if err != nil {
		return nil, err
	}
	slog.Info("mk3 opened", "product", tr.String(), "display", false)
	return NewDevice(tr), nil
}

// NewDevice wraps an already-open transport. Useful for tests and for
// embedders with their own device discovery.
func NewDevice(tr usb.Transport) *Device {
	return &Device{tr: tr}
}

// Close releases the transport. Further calls on the Device return
// ErrNotConnected; a second Close is a no-op.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.tr.Close()
}

// String identifies the device for logs.
func (d *Device) String() string {
	if s, ok := d.tr.(fmt.Stringer); ok {
		return s.String()
	}
	return "Maschine MK3"
}

// PollInput reads one input report and returns the events it implies
// relative to the previous report. An idle controller yields an empty
// slice and a nil error once the poll window expires.
func (d *Device) PollInput(ctx context.Context) ([]input.Event, error) {
	window := d.PollTimeout
	if window <= 0 {
		window = pollTimeout
	}
	return d.poll(ctx, window)
}

// PollInputFast is PollInput with a 1ms window, for callers running
// their own tight loop.
func (d *Device) PollInputFast(ctx context.Context) ([]input.Event, error) {
	window := d.FastPollTimeout
	if window <= 0 {
		window = fastPollTimeout
	}
	return d.poll(ctx, window)
}

func (d *Device) poll(ctx context.Context, window time.Duration) ([]input.Event, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(ctx, window)
	defer cancel()
	report, err := d.tr.ReadReport(ctx)
	if errors.Is(err, usb.ErrTimeout) {
		return []input.Event{}, nil
	}
	if err != nil {
		return nil, err
	}
	if slog.Default().Enabled(ctx, slog.LevelDebug) {
		slog.Debug("input report", "len", len(report), "data", fmt.Sprintf("% x", report))
	}
	return d.dec.Decode(report), nil
}

// InputState returns a copy of the controller state implied by the
// last decoded report, for callers that prefer polling absolute state
// over consuming events.
func (d *Device) InputState() input.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return *d.dec.State()
}

// SetButtonLED buffers a colour for a button LED. Single-colour
// buttons take the scalar brightness of the colour. The change is
// sent by the next FlushLEDs.
func (d *Device) SetButtonLED(b input.Button, c leds.Color) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrNotConnected
	}
	if err := d.leds.SetButton(b, c); err != nil {
		return fmt.Errorf("%w: button %v has no LED", ErrInvalidParameter, b)
	}
	return nil
}

// SetButtonBrightness buffers a raw intensity (0-127) for a button LED.
func (d *Device) SetButtonBrightness(b input.Button, brightness uint8) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrNotConnected
	}
	if err := d.leds.SetButtonBrightness(b, brightness); err != nil {
		return fmt.Errorf("%w: button %v has no LED", ErrInvalidParameter, b)
	}
	return nil
}

// SetPadLED buffers a colour for one of the 16 pads (0-15).
func (d *Device) SetPadLED(pad uint8, c leds.Color) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrNotConnected
	}
	if err := d.leds.SetPad(pad, c); err != nil {
		return fmt.Errorf("%w: pad %d", ErrInvalidParameter, pad)
	}
	return nil
}

// SetStripLED buffers a colour for one of the touch strip LEDs (0-24).
func (d *Device) SetStripLED(i uint8, c leds.Color) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrNotConnected
	}
	if err := d.leds.SetStrip(i, c); err != nil {
		return fmt.Errorf("%w: strip led %d", ErrInvalidParameter, i)
	}
	return nil
}

// SetAllPadLEDs buffers one colour for every pad.
func (d *Device) SetAllPadLEDs(c leds.Color) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrNotConnected
	}
	d.leds.SetAllPads(c)
	return nil
}

// ClearAllLEDs buffers off for every LED on the controller.
func (d *Device) ClearAllLEDs() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrNotConnected
	}
	d.leds.Clear()
	return nil
}

// FlushLEDs sends the buffered LED state to the controller in its two
// output reports. Buffered changes coalesce, so a burst of setter
// calls costs one flush.
func (d *Device) FlushLEDs(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := d.tr.WriteReport(ctx, d.leds.ButtonReport()); err != nil {
		return fmt.Errorf("flushing button leds: %w", err)
	}
	if err := d.tr.WriteReport(ctx, d.leds.PadReport()); err != nil {
		return fmt.Errorf("flushing pad leds: %w", err)
	}
	return nil
}

// IsDisplayAvailable reports whether the transport can reach the
// displays. False for HID-only access.
func (d *Device) IsDisplayAvailable() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.closed && d.tr.BulkAvailable()
}

// WriteDisplayFull pushes a complete RGB888 frame (480x272, 3 bytes
// per pixel) to one display and remembers it for later differential
// writes.
func (d *Device) WriteDisplayFull(ctx context.Context, displayID uint8, frame []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrNotConnected
	}
	pkt, err := display.EncodeFull(displayID, frame)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidParameter, err)
	}
	if err := d.writeBulk(ctx, pkt); err != nil {
		return err
	}
	d.rememberFrame(displayID, frame)
	return nil
}

// WriteDisplayDirty pushes only the rectangle of frame that changed
// since the last write to this display. The first write after Open (or
// after a region write) sends the full frame. When nothing changed the
// call is free: no USB traffic happens.
func (d *Device) WriteDisplayDirty(ctx context.Context, displayID uint8, frame []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrNotConnected
	}
	if displayID != display.Left && displayID != display.Right {
		return fmt.Errorf("%w: display id %d", ErrInvalidParameter, displayID)
	}
	pkt, err := display.EncodeDirty(displayID, frame, d.frame[displayID])
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidParameter, err)
	}
	if pkt == nil {
		return nil
	}
	if err := d.writeBulk(ctx, pkt); err != nil {
		return err
	}
	d.rememberFrame(displayID, frame)
	return nil
}

// WriteDisplayRegion pushes an RGB888 sub-rectangle. region holds the
// rectangle's rows only, width*height*3 bytes. The cached frame for
// the display is invalidated, so the next differential write sends a
// full frame.
func (d *Device) WriteDisplayRegion(ctx context.Context, displayID uint8, x, y, width, height int, region []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrNotConnected
	}
	pkt, err := display.EncodeRegion(displayID, x, y, width, height, region)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidParameter, err)
	}
	if err := d.writeBulk(ctx, pkt); err != nil {
		return err
	}
	d.frame[displayID] = nil
	return nil
}

// ClearDisplay fills one display with black using a single-run packet.
func (d *Device) ClearDisplay(ctx context.Context, displayID uint8) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrNotConnected
	}
	pkt, err := display.EncodeFill(displayID, 0, 0, 0)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidParameter, err)
	}
	if err := d.writeBulk(ctx, pkt); err != nil {
		return err
	}
	d.rememberFrame(displayID, make([]byte, display.Width*display.Height*3))
	return nil
}

// writeBulk sends one display packet with a deadline scaled to its
// size. Callers hold d.mu.
func (d *Device) writeBulk(ctx context.Context, pkt []byte) error {
	if !d.tr.BulkAvailable() {
		return ErrNoDisplay
	}
	ctx, cancel := context.WithTimeout(ctx, bulkBaseTimeout+time.Duration(len(pkt))*time.Microsecond)
	defer cancel()
	return d.tr.WriteBulk(ctx, pkt)
}

func (d *Device) rememberFrame(displayID uint8, frame []byte) {
	if d.frame[displayID] == nil {
		d.frame[displayID] = make([]byte, len(frame))
	}
	copy(d.frame[displayID], frame)
}
