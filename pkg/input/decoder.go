package input

// Report types on the interrupt IN endpoint.
const (
	controlReport = 0x01 // buttons, knobs, touch strip, audio pots
	padReport     = 0x02 // pad pressure entries
)

// controlReportLen is the minimum length of a 0x01 report; anything
// shorter is a partial read and is dropped.
const controlReportLen = 42

// Pad entry state sentinel, low nibble of the pad value word.
const (
	padIdle   = 0x0
	padTouch  = 0x1
	padStrike = 0x2
)

// NumPads is the number of pressure pads on the grid.
const NumPads = 16

// padState tracks one pad between reports. byTouch remembers how the
// pad left idle, which selects the release event later.
type padState struct {
	pressure uint16
	byTouch  bool
}

type finger struct {
	position uint16
	pressure uint16
}

// Snapshot is the most recently decoded state of every input element.
// It is replaced wholesale on each successful decode and serves as the
// previous state for diffing the next report.
type Snapshot struct {
	buttons [numButtons]bool
	knobs   [NumKnobs]uint16
	encoder uint16
	pads    [NumPads]padState
	strip   [2]finger
	audio   [3]uint16
}

// Button reports the held state of a button in the snapshot.
func (s *Snapshot) Button(b Button) bool {
	if b >= numButtons {
		return false
	}
	return s.buttons[b]
}

// Knob reports the absolute position of a knob in the snapshot.
func (s *Snapshot) Knob(k Knob) uint16 {
	if k == MainEncoder {
		return s.encoder
	}
	if int(k) >= NumKnobs {
		return 0
	}
	return s.knobs[k]
}

// PadPressure reports a pad's magnitude in the snapshot, 0 when idle.
func (s *Snapshot) PadPressure(pad uint8) uint16 {
	if pad >= NumPads {
		return 0
	}
	return s.pads[pad].pressure
}

// Decoder turns raw input reports into events by stateful diffing.
// The zero value is ready to use, with every element idle. It is not
// safe for concurrent use.
type Decoder struct {
	snap Snapshot
}

// State returns the current snapshot.
func (d *Decoder) State() *Snapshot { return &d.snap }

// Decode parses one raw report and returns the changes observed since
// the previous report, in report order. Malformed or short reports
// decode to no events: partial interrupt reads are routine under load
// and must not surface as errors.
func (d *Decoder) Decode(report []byte) []Event {
	if len(report) == 0 {
		return nil
	}
	switch report[0] {
	case controlReport:
		if len(report) < controlReportLen {
			return nil
		}
		return d.decodeControl(report)
	case padReport:
		return d.decodePads(report)
	}
	return nil
}

func (d *Decoder) decodeControl(report []byte) []Event {
	next := d.snap // copy; pads are carried over untouched

	for i := range next.buttons {
		next.buttons[i] = false
	}
	for _, bb := range buttonBits {
		if report[bb.byteIdx]&bb.mask != 0 {
			next.buttons[bb.btn] = true
		}
	}
	next.encoder = uint16(report[11] & 0x0F)
	for k := 0; k < NumKnobs; k++ {
		lo := report[12+2*k]
		hi := report[13+2*k]
		next.knobs[k] = uint16(hi&0x03)<<8 | uint16(lo)
	}
	for f := 0; f < 2; f++ {
		base := 28 + 4*f
		next.strip[f] = finger{
			position: le16(report[base], report[base+1]),
			pressure: le16(report[base+2], report[base+3]),
		}
	}
	for a := 0; a < 3; a++ {
		next.audio[a] = le16(report[36+2*a], report[37+2*a])
	}

	var events []Event
	for _, bb := range buttonBits {
		old, now := d.snap.buttons[bb.btn], next.buttons[bb.btn]
		switch {
		case now && !old:
			events = append(events, ButtonPressed{Button: bb.btn})
		case !now && old:
			events = append(events, ButtonReleased{Button: bb.btn})
		}
	}
	if next.encoder != d.snap.encoder {
		events = append(events, KnobChanged{
			Knob:  MainEncoder,
			Value: next.encoder,
			Delta: wrapDelta(next.encoder, d.snap.encoder, MainEncoder.wrap()),
		})
	}
	for k := 0; k < NumKnobs; k++ {
		if next.knobs[k] != d.snap.knobs[k] {
			events = append(events, KnobChanged{
				Knob:  Knob(k),
				Value: next.knobs[k],
				Delta: wrapDelta(next.knobs[k], d.snap.knobs[k], Knob(k).wrap()),
			})
		}
	}
	for f := 0; f < 2; f++ {
		if next.strip[f] != d.snap.strip[f] {
			events = append(events, StripTouch{
				Finger:   uint8(f),
				Position: next.strip[f].position,
				Pressure: next.strip[f].pressure,
			})
		}
	}
	for a := 0; a < 3; a++ {
		if next.audio[a] != d.snap.audio[a] {
			events = append(events, AudioChanged{
				Control: AudioControl(a),
				Value:   next.audio[a],
				Delta:   int(next.audio[a]) - int(d.snap.audio[a]),
			})
		}
	}

	// Replace the snapshot only after all events are derived, never
	// partially.
	d.snap = next
	return events
}

// decodePads parses a 0x02 report: 3-byte entries of pad id followed
// by a big-endian value word whose top 12 bits are the pressure and
// whose low nibble marks how the pad is engaged (idle, touch or
// strike). An id above 15 terminates the entry list.
func (d *Decoder) decodePads(report []byte) []Event {
	var events []Event
	for off := 1; off+2 < len(report); off += 3 {
		pad := report[off]
		if pad >= NumPads {
			break
		}
		value := uint16(report[off+1])<<8 | uint16(report[off+2])
		events = d.updatePad(events, pad, value>>4, value&0x0F)
	}
	return events
}

func (d *Decoder) updatePad(events []Event, pad uint8, pressure, mode uint16) []Event {
	s := &d.snap.pads[pad]
	switch {
	case s.pressure == 0 && pressure > 0:
		s.byTouch = mode == padTouch
		events = append(events, PadHit{Pad: pad, Pressure: pressure})
	case s.pressure > 0 && pressure == 0:
		if s.byTouch {
			events = append(events, PadTouchRelease{Pad: pad})
		} else {
			events = append(events, PadHitRelease{Pad: pad})
		}
		s.byTouch = false
	case pressure > 0 && pressure != s.pressure:
		events = append(events, PadAftertouch{Pad: pad, Pressure: pressure})
	}
	s.pressure = pressure
	return events
}

// wrapDelta is the signed difference of two absolute positions modulo
// the wrap width: a roll-over in either direction comes out as a
// small step.
func wrapDelta(now, before uint16, wrap int) int {
	d := int(now) - int(before)
	switch {
	case d > wrap/2:
		d -= wrap
	case d < -wrap/2:
		d += wrap
	}
	return d
}

func le16(lo, hi byte) uint16 {
	return uint16(hi)<<8 | uint16(lo)
}
