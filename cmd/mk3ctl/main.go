// mk3ctl pokes a connected Maschine MK3 from the command line:
//
//	mk3ctl list                  enumerate NI hardware on the bus
//	mk3ctl monitor               print input events until interrupted
//	mk3ctl fill <display> <r> <g> <b>   flood one display with a colour
//	mk3ctl pads                  sweep the colour palette across the pads
//	mk3ctl clear                 all LEDs off, both displays black
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	karalabe "github.com/karalabe/usb"

	"github.com/srose-io/maschine3-hal/pkg/display"
	"github.com/srose-io/maschine3-hal/pkg/input"
	"github.com/srose-io/maschine3-hal/pkg/leds"
	"github.com/srose-io/maschine3-hal/pkg/mk3"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if len(os.Args) < 2 {
		usage()
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM, syscall.SIGINT,
	)
	defer stop()

	var err error
	switch os.Args[1] {
	case "list":
		err = list()
	case "monitor":
		err = monitor(ctx)
	case "fill":
		err = fill(ctx, os.Args[2:])
	case "pads":
		err = pads(ctx)
	case "clear":
		err = clear(ctx)
	default:
		usage()
	}
	if err != nil {
		slog.Error("mk3ctl failed", "cmd", os.Args[1], "err", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: mk3ctl list | monitor | fill <display> <r> <g> <b> | pads | clear")
	os.Exit(2)
}

// list enumerates Native Instruments devices without claiming them.
func list() error {
	infos, err := karalabe.Enumerate(mk3.VendorID, 0)
	if err != nil {
		return fmt.Errorf("enumerating: %w", err)
	}
	if len(infos) == 0 {
		fmt.Println("no Native Instruments devices found")
		return nil
	}
	for _, info := range infos {
		tag := ""
		if info.ProductID == mk3.ProductID {
			tag = "  <- Maschine MK3"
		}
		fmt.Printf("%04x:%04x  %-30s serial=%s interface=%d%s\n",
			info.VendorID, info.ProductID, info.Product, info.Serial, info.Interface, tag)
	}
	return nil
}

func monitor(ctx context.Context) error {
	dev, err := mk3.Open()
	if err != nil {
		return err
	}
	defer dev.Close()

	fmt.Println("monitoring input, ctrl-c to stop")
	for ctx.Err() == nil {
		events, err := dev.PollInput(ctx)
		if err != nil {
			return err
		}
		for _, ev := range events {
			fmt.Printf("%T%+v\n", ev, ev)
		}
	}
	return nil
}

func fill(ctx context.Context, args []string) error {
	if len(args) != 4 {
		usage()
	}
	vals := make([]uint8, 4)
	for i, a := range args {
		n, err := strconv.ParseUint(a, 10, 8)
		if err != nil {
			return fmt.Errorf("argument %q: %w", a, err)
		}
		vals[i] = uint8(n)
	}

	dev, err := mk3.Open()
	if err != nil {
		return err
	}
	defer dev.Close()

	if !dev.IsDisplayAvailable() {
		return mk3.ErrNoDisplay
	}
	frame := make([]byte, display.Width*display.Height*3)
	for i := 0; i < len(frame); i += 3 {
		frame[i], frame[i+1], frame[i+2] = vals[1], vals[2], vals[3]
	}
	return dev.WriteDisplayFull(ctx, vals[0], frame)
}

// pads walks the palette across the 4x4 grid, one step per 100ms.
func pads(ctx context.Context) error {
	dev, err := mk3.Open()
	if err != nil {
		return err
	}
	defer dev.Close()

	for step := 0; ctx.Err() == nil; step++ {
		for pad := uint8(0); pad < input.NumPads; pad++ {
			c := leds.Color{Index: uint8((step + int(pad)) % 17), Bright: true}
			if err := dev.SetPadLED(pad, c); err != nil {
				return err
			}
		}
		if err := dev.FlushLEDs(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
		case <-time.After(100 * time.Millisecond):
		}
	}

	dev.ClearAllLEDs()
	return dev.FlushLEDs(context.Background())
}

func clear(ctx context.Context) error {
	dev, err := mk3.Open()
	if err != nil {
		return err
	}
	defer dev.Close()

	if err := dev.ClearAllLEDs(); err != nil {
		return err
	}
	if err := dev.FlushLEDs(ctx); err != nil {
		return err
	}
	if dev.IsDisplayAvailable() {
		for _, id := range []uint8{display.Left, display.Right} {
			if err := dev.ClearDisplay(ctx, id); err != nil {
				return err
			}
		}
	}
	return nil
}
