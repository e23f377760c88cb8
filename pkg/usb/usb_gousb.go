package usb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/gousb"
)

// maxBulkTransfer caps a single display write. A full 480x272 frame
// with header and commands is ~256 KiB, well inside this.
const maxBulkTransfer = 1 << 20

// Direct drives the controller over raw USB. It claims the HID
// interface for report I/O and, when possible, the display interface
// for bulk frame transfers. Opening detaches any kernel or vendor
// driver bound to those interfaces; that is an expected mutation of
// the OS driver binding, not an error.
type Direct struct {
	ctx *gousb.Context
	dev *gousb.Device
	cfg *gousb.Config

	hid *gousb.Interface
	in  *gousb.InEndpoint
	out *gousb.OutEndpoint

	disp *gousb.Interface
	bulk *gousb.OutEndpoint

	product string
}

// OpenDirect opens the first device matching vendorID/productID and
// claims its interfaces. The display interface is optional: without a
// WinUSB driver or udev permissions it may be unclaimable while the
// report channel still works, in which case BulkAvailable reports
// false and display writes fail with ErrNoBulk.
func OpenDirect(vendorID, productID uint16) (*Direct, error) {
	ctx := gousb.NewContext()

	dev, err := ctx.OpenDeviceWithVIDPID(gousb.ID(vendorID), gousb.ID(productID))
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("usb: open %04x:%04x: %w", vendorID, productID, err)
	}
	if dev == nil {
		ctx.Close()
		return nil, ErrDeviceNotFound
	}

	if err := dev.SetAutoDetach(true); err != nil {
		slog.Warn("kernel driver auto-detach unavailable", slog.Any("error", err))
	}

	cfg, err := dev.Config(1)
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("usb: select configuration: %w", err)
	}

	t := &Direct{ctx: ctx, dev: dev, cfg: cfg}
	if p, err := dev.Product(); err == nil {
		t.product = p
	}

	t.hid, err = claimInterface(cfg, hidInterface)
	if err != nil {
		t.Close()
		return nil, fmt.Errorf("usb: claim hid interface %d: %w", hidInterface, err)
	}
	t.in, err = t.hid.InEndpoint(inputEndpoint)
	if err != nil {
		t.Close()
		return nil, fmt.Errorf("usb: input endpoint: %w", err)
	}
	t.out, err = t.hid.OutEndpoint(outputEndpoint)
	if err != nil {
		t.Close()
		return nil, fmt.Errorf("usb: output endpoint: %w", err)
	}

	t.disp, err = claimInterface(cfg, displayInterface)
	if err != nil {
		slog.Warn("display interface unavailable, continuing without displays",
			slog.Int("interface", displayInterface), slog.Any("error", err))
		t.disp = nil
		return t, nil
	}
	t.bulk, err = t.disp.OutEndpoint(displayEndpoint)
	if err != nil {
		slog.Warn("display endpoint unavailable, continuing without displays",
			slog.Int("endpoint", displayEndpoint), slog.Any("error", err))
		t.disp.Close()
		t.disp = nil
	}
	return t, nil
}

// claimInterface claims alt setting 0 of the numbered interface,
// retrying once: a claim can race with the kernel re-binding its
// driver right after enumeration.
func claimInterface(cfg *gousb.Config, num int) (*gousb.Interface, error) {
	intf, err := cfg.Interface(num, 0)
	if err == nil {
		return intf, nil
	}
	slog.Warn("interface claim failed, retrying once",
		slog.Int("interface", num), slog.Any("error", err))
	return cfg.Interface(num, 0)
}

func (t *Direct) ReadReport(ctx context.Context) ([]byte, error) {
	buf := make([]byte, ReportSize)
	n, err := t.in.ReadContext(ctx, buf)
	if err != nil {
		return nil, mapTransferErr("read report", err)
	}
	return buf[:n], nil
}

func (t *Direct) WriteReport(ctx context.Context, data []byte) error {
	if _, err := t.out.WriteContext(ctx, data); err != nil {
		return mapTransferErr("write report", err)
	}
	return nil
}

func (t *Direct) WriteBulk(ctx context.Context, data []byte) error {
	if t.bulk == nil {
		return ErrNoBulk
	}
	if len(data) > maxBulkTransfer {
		return fmt.Errorf("usb: bulk payload %d exceeds %d bytes", len(data), maxBulkTransfer)
	}
	if _, err := t.bulk.WriteContext(ctx, data); err != nil {
		return mapTransferErr("write bulk", err)
	}
	return nil
}

func (t *Direct) BulkAvailable() bool { return t.bulk != nil }

func (t *Direct) MaxBulkSize() int {
	if t.bulk == nil {
		return 0
	}
	return maxBulkTransfer
}

func (t *Direct) String() string { return t.product }

// Close releases the claimed interfaces and the device handle.
func (t *Direct) Close() error {
	if t.disp != nil {
		t.disp.Close()
	}
	if t.hid != nil {
		t.hid.Close()
	}
	var err error
	if t.cfg != nil {
		err = t.cfg.Close()
	}
	if t.dev != nil {
		if cerr := t.dev.Close(); err == nil {
			err = cerr
		}
	}
	t.ctx.Close()
	return err
}

func mapTransferErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, gousb.TransferTimedOut) ||
		errors.Is(err, gousb.ErrorTimeout) {
		return ErrTimeout
	}
	return fmt.Errorf("usb: %s: %w", op, err)
}
