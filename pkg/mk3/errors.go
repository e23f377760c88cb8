package mk3

import (
	"errors"

	"github.com/srose-io/maschine3-hal/pkg/usb"
)

// USB identity of the Maschine MK3.
const (
	VendorID  uint16 = 0x17CC
	ProductID uint16 = 0x1600
)

var (
	// ErrInvalidParameter is returned when an argument is outside the
	// hardware's range (unknown LED, off-panel region, bad frame size).
	ErrInvalidParameter = errors.New("mk3: invalid parameter")

	// ErrNotConnected is returned by every operation after Close.
	ErrNotConnected = errors.New("mk3: device not connected")

	// ErrDeviceNotFound indicates no MK3 was found during Open.
	ErrDeviceNotFound = usb.ErrDeviceNotFound

	// ErrTimeout indicates a transfer deadline expired. PollInput
	// absorbs it; it surfaces from writes.
	ErrTimeout = usb.ErrTimeout

	// ErrNoDisplay is returned by display writes when the transport
	// carries no bulk channel (HID-only access).
	ErrNoDisplay = usb.ErrNoBulk
)
