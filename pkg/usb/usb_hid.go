package usb

import (
	"context"
	"fmt"

	"rafaelmartins.com/p/usbhid"
)

// HIDShim is a Transport over the OS HID layer. It carries the report
// channel only: input reports and LED reports work, but the display
// interface is not reachable through HID, so WriteBulk always fails
// with ErrNoBulk. Use it where the raw USB interfaces cannot be
// claimed (no WinUSB driver, no udev rule).
type HIDShim struct {
	dev *usbhid.Device

	// One HID read may be left in flight after a poll deadline; the
	// next ReadReport collects its result instead of starting over.
	pending chan hidRead
}

type hidRead struct {
	id   byte
	data []byte
	err  error
}

// OpenHID opens the first HID device matching vendorID/productID.
func OpenHID(vendorID, productID uint16) (*HIDShim, error) {
	match := func(d *usbhid.Device) bool {
		return d.VendorId() == vendorID && d.ProductId() == productID
	}
	devs, err := usbhid.Enumerate(match)
	if err != nil {
		return nil, fmt.Errorf("usb: hid enumerate: %w", err)
	}
	if len(devs) == 0 {
		return nil, ErrDeviceNotFound
	}
	dev, err := usbhid.Get(match, true, false)
	if err != nil {
		return nil, fmt.Errorf("usb: hid open: %w", err)
	}
	return &HIDShim{dev: dev}, nil
}

// ReadReport returns the next input report with its report id as the
// leading byte, matching the layout of raw interrupt transfers.
func (h *HIDShim) ReadReport(ctx context.Context) ([]byte, error) {
	if h.pending == nil {
		h.pending = make(chan hidRead, 1)
		go func(out chan<- hidRead) {
			id, data, err := h.dev.GetInputReport()
			out <- hidRead{id: id, data: data, err: err}
		}(h.pending)
	}
	select {
	case r := <-h.pending:
		h.pending = nil
		if r.err != nil {
			return nil, fmt.Errorf("usb: hid read: %w", r.err)
		}
		report := make([]byte, 0, len(r.data)+1)
		report = append(report, r.id)
		return append(report, r.data...), nil
	case <-ctx.Done():
		return nil, ErrTimeout
	}
}

// WriteReport sends an output report; data[0] is the report id.
func (h *HIDShim) WriteReport(_ context.Context, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if err := h.dev.SetOutputReport(data[0], data[1:]); err != nil {
		return fmt.Errorf("usb: hid write: %w", err)
	}
	return nil
}

func (h *HIDShim) WriteBulk(context.Context, []byte) error { return ErrNoBulk }

func (h *HIDShim) BulkAvailable() bool { return false }

func (h *HIDShim) MaxBulkSize() int { return 0 }

func (h *HIDShim) String() string { return h.dev.Product() }

func (h *HIDShim) Close() error { return h.dev.Close() }
