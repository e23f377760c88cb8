package input

import (
	"reflect"
	"testing"
)

// ctrlReport builds a minimal 0x01 report and lets the test poke the
// bytes it cares about.
func ctrlReport(mutate func(r []byte)) []byte {
	r := make([]byte, controlReportLen)
	r[0] = controlReport
	if mutate != nil {
		mutate(r)
	}
	return r
}

// padEntry encodes one 3-byte pad report entry.
func padEntry(pad uint8, pressure uint16, mode uint16) []byte {
	value := pressure<<4 | mode
	return []byte{pad, byte(value >> 8), byte(value)}
}

func padReportOf(entries ...[]byte) []byte {
	r := []byte{padReport}
	for _, e := range entries {
		r = append(r, e...)
	}
	// terminator entry, id out of range
	return append(r, 0xFF, 0x00, 0x00)
}

func TestButtonPressAndRelease(t *testing.T) {
	var d Decoder

	pressed := d.Decode(ctrlReport(func(r []byte) { r[6] |= 0x20 })) // Play
	want := []Event{ButtonPressed{Button: BtnPlay}}
	if !reflect.DeepEqual(pressed, want) {
		t.Fatalf("press: got %+v, want %+v", pressed, want)
	}
	if !d.State().Button(BtnPlay) {
		t.Fatal("snapshot should show Play held")
	}

	held := d.Decode(ctrlReport(func(r []byte) { r[6] |= 0x20 }))
	if len(held) != 0 {
		t.Fatalf("unchanged report should yield no events, got %+v", held)
	}

	released := d.Decode(ctrlReport(nil))
	want = []Event{ButtonReleased{Button: BtnPlay}}
	if !reflect.DeepEqual(released, want) {
		t.Fatalf("release: got %+v, want %+v", released, want)
	}
}

func TestButtonEventsFollowReportOrder(t *testing.T) {
	var d Decoder
	events := d.Decode(ctrlReport(func(r []byte) {
		r[2] |= 0x01 // GroupA
		r[1] |= 0x40 // Shift, earlier in the report
	}))
	want := []Event{
		ButtonPressed{Button: BtnShift},
		ButtonPressed{Button: BtnGroupA},
	}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("got %+v, want %+v", events, want)
	}
}

func TestKnobWrapDelta(t *testing.T) {
	var d Decoder

	// 0 -> 1020 reads as four detents backwards, not 1020 forwards.
	events := d.Decode(ctrlReport(func(r []byte) {
		r[12], r[13] = 0xFC, 0x03 // knob 1 = 1020
	}))
	want := []Event{KnobChanged{Knob: 0, Value: 1020, Delta: -4}}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("first turn: got %+v, want %+v", events, want)
	}

	// 1020 -> 5 crosses the wrap point: +9.
	events = d.Decode(ctrlReport(func(r []byte) {
		r[12], r[13] = 0x05, 0x00
	}))
	want = []Event{KnobChanged{Knob: 0, Value: 5, Delta: 9}}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("wrap: got %+v, want %+v", events, want)
	}
}

func TestMainEncoderWrap(t *testing.T) {
	var d Decoder

	events := d.Decode(ctrlReport(func(r []byte) { r[11] = 15 }))
	want := []Event{KnobChanged{Knob: MainEncoder, Value: 15, Delta: -1}}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("got %+v, want %+v", events, want)
	}

	events = d.Decode(ctrlReport(func(r []byte) { r[11] = 0 }))
	want = []Event{KnobChanged{Knob: MainEncoder, Value: 0, Delta: 1}}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("got %+v, want %+v", events, want)
	}
}

func TestStripAndAudioEvents(t *testing.T) {
	var d Decoder
	events := d.Decode(ctrlReport(func(r []byte) {
		r[28], r[29] = 0x00, 0x02 // first finger position 512
		r[30], r[31] = 0xE8, 0x03 // first finger pressure 1000
		r[36], r[37] = 0x2C, 0x01 // mic gain 300
	}))
	want := []Event{
		StripTouch{Finger: 0, Position: 512, Pressure: 1000},
		AudioChanged{Control: MicGain, Value: 300, Delta: 300},
	}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("got %+v, want %+v", events, want)
	}
}

func TestMalformedReportsAreDropped(t *testing.T) {
	tests := []struct {
		name   string
		report []byte
	}{
		{"empty", nil},
		{"short control", ctrlReport(nil)[:10]},
		{"unknown type", []byte{0x7F, 1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Decoder
			if events := d.Decode(tt.report); events != nil {
				t.Fatalf("got %+v, want none", events)
			}
			if d.State().Button(BtnShift) || d.State().Knob(0) != 0 {
				t.Fatal("malformed report must not touch the snapshot")
			}
		})
	}
}

func TestPadStrikeLifecycle(t *testing.T) {
	var d Decoder

	events := d.Decode(padReportOf(padEntry(3, 3000, padStrike)))
	want := []Event{PadHit{Pad: 3, Pressure: 3000}}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("hit: got %+v, want %+v", events, want)
	}
	if got := d.State().PadPressure(3); got != 3000 {
		t.Fatalf("snapshot pressure = %d, want 3000", got)
	}

	// Same pressure repeated: held, no event, and no second hit.
	if events := d.Decode(padReportOf(padEntry(3, 3000, padStrike))); len(events) != 0 {
		t.Fatalf("held: got %+v, want none", events)
	}

	events = d.Decode(padReportOf(padEntry(3, 3200, padStrike)))
	want = []Event{PadAftertouch{Pad: 3, Pressure: 3200}}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("aftertouch: got %+v, want %+v", events, want)
	}

	events = d.Decode(padReportOf(padEntry(3, 0, padIdle)))
	want = []Event{PadHitRelease{Pad: 3}}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("release: got %+v, want %+v", events, want)
	}
}

func TestPadTouchReleasesAsTouch(t *testing.T) {
	var d Decoder

	events := d.Decode(padReportOf(padEntry(7, 500, padTouch)))
	want := []Event{PadHit{Pad: 7, Pressure: 500}}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("touch: got %+v, want %+v", events, want)
	}

	events = d.Decode(padReportOf(padEntry(7, 0, padIdle)))
	want = []Event{PadTouchRelease{Pad: 7}}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("release: got %+v, want %+v", events, want)
	}
}

func TestPadListStopsAtTerminator(t *testing.T) {
	var d Decoder

	report := []byte{padReport}
	report = append(report, padEntry(0, 100, padStrike)...)
	report = append(report, 0x10, 0xFF, 0xFF) // id 16 terminates
	report = append(report, padEntry(1, 100, padStrike)...)

	events := d.Decode(report)
	want := []Event{PadHit{Pad: 0, Pressure: 100}}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("got %+v, want %+v", events, want)
	}
	if got := d.State().PadPressure(1); got != 0 {
		t.Fatalf("pad after terminator decoded, pressure %d", got)
	}
}

func TestControlReportKeepsPadState(t *testing.T) {
	var d Decoder
	d.Decode(padReportOf(padEntry(5, 1234, padStrike)))
	d.Decode(ctrlReport(nil))
	if got := d.State().PadPressure(5); got != 1234 {
		t.Fatalf("control report clobbered pad state, pressure %d", got)
	}
}
