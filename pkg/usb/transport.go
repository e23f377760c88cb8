// Package usb provides the low-level transports for the Maschine MK3:
// a direct USB implementation driving both the HID report channel and
// the bulk display channel, and a HID compatibility shim for hosts
// where the raw USB interfaces cannot be claimed.
//
// A Transport is not safe for concurrent use; the facade in pkg/mk3
// serializes every operation behind one lock, because the underlying
// endpoints do not support concurrent in-flight transfers.
package usb

import (
	"context"
	"errors"
)

// USB topology of the MK3. Fixed by the hardware, not configurable.
const (
	hidInterface     = 4 // input reports in, LED reports out
	displayInterface = 5 // display frames out

	inputEndpoint   = 3 // 0x83 interrupt IN
	outputEndpoint  = 3 // 0x03 interrupt OUT
	displayEndpoint = 4 // 0x04 bulk OUT
)

// ReportSize is the interrupt transfer buffer size for input reports.
// The device never sends more than 64 bytes per report.
const ReportSize = 64

var (
	// ErrDeviceNotFound is returned by the open functions when no
	// device with the requested vendor/product id is attached.
	ErrDeviceNotFound = errors.New("usb: device not found")

	// ErrTimeout is returned when a transfer did not complete within
	// the deadline of its context. Absence of an input report within
	// a poll window is a normal outcome, not a device fault.
	ErrTimeout = errors.New("usb: transfer timed out")

	// ErrNoBulk is returned by WriteBulk on transports that carry no
	// bulk channel, such as the HID shim.
	ErrNoBulk = errors.New("usb: transport has no bulk channel")
)

// Transport is the device I/O boundary. ReadReport and WriteReport
// exchange fixed-layout reports on the bidirectional HID channel;
// WriteBulk pushes display frames on the one-directional bulk channel.
// Deadlines are carried by the context; every call blocks until the
// transfer completes, fails, or the deadline expires.
type Transport interface {
	ReadReport(ctx context.Context) ([]byte, error)
	WriteReport(ctx context.Context, data []byte) error
	WriteBulk(ctx context.Context, data []byte) error

	// BulkAvailable reports whether the display channel was claimed.
	BulkAvailable() bool

	// MaxBulkSize is the largest payload WriteBulk accepts in one
	// call. Zero when no bulk channel is available.
	MaxBulkSize() int

	Close() error
}
