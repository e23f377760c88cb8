package leds

import (
	"errors"

	"github.com/srose-io/maschine3-hal/pkg/input"
)

// ErrNoSuchLED is returned by setters for ids outside the LED table.
// A failed setter never mutates the buffer.
var ErrNoSuchLED = errors.New("leds: no such led")

// Output report layout. Two reports cover all LEDs: 0x80 carries the
// button LEDs, 0x81 carries the touch strip and the pads.
const (
	buttonReportType = 0x80
	padReportType    = 0x81

	buttonReportLen = 63 // type byte + 62 LED slots
	padReportLen    = 42 // type byte + 25 strip + 16 pad slots

	// NumStripLEDs is the RGB LED count under the touch strip.
	NumStripLEDs = 25
)

// buttonSlots is the static id-to-offset table of report 0x80. RGB
// slots take a palette ledValue byte, the rest take a scalar
// brightness byte.
var buttonSlots = map[input.Button]struct {
	slot int
	rgb  bool
}{
	input.BtnChannelMidi:   {1, false},
	input.BtnPlugin:        {2, false},
	input.BtnArranger:      {3, false},
	input.BtnMixer:         {4, false},
	input.BtnBrowserPlugin: {5, true},
	input.BtnSampling:      {6, false},
	input.BtnArrowLeft:     {7, false},
	input.BtnArrowRight:    {8, false},
	input.BtnFileSave:      {9, false},
	input.BtnSettings:      {10, false},
	input.BtnAuto:          {11, false},
	input.BtnMacro:         {12, false},
	input.BtnDisplay1:      {13, false},
	input.BtnDisplay2:      {14, false},
	input.BtnDisplay3:      {15, false},
	input.BtnDisplay4:      {16, false},
	input.BtnDisplay5:      {17, false},
	input.BtnDisplay6:      {18, false},
	input.BtnDisplay7:      {19, false},
	input.BtnDisplay8:      {20, false},
	input.BtnVolume:        {21, false},
	input.BtnSwing:         {22, false},
	input.BtnNoteRepeat:    {23, false},
	input.BtnTempo:         {24, false},
	input.BtnLock:          {25, false},
	input.BtnPitch:         {26, false},
	input.BtnMod:           {27, false},
	input.BtnPerform:       {28, false},
	input.BtnNotes:         {29, false},
	input.BtnGroupA:        {30, true},
	input.BtnGroupB:        {31, true},
	input.BtnGroupC:        {32, true},
	input.BtnGroupD:        {33, true},
	input.BtnGroupE:        {34, true},
	input.BtnGroupF:        {35, true},
	input.BtnGroupG:        {36, true},
	input.BtnGroupH:        {37, true},
	input.BtnRestart:       {38, false},
	input.BtnErase:         {39, false},
	input.BtnTap:           {40, false},
	input.BtnFollow:        {41, false},
	input.BtnPlay:          {42, false},
	input.BtnRec:           {43, false},
	input.BtnStop:          {44, false},
	input.BtnShift:         {45, false},
	input.BtnFixedVel:      {46, false},
	input.BtnPadMode:       {47, false},
	input.BtnKeyboard:      {48, false},
	input.BtnChords:        {49, false},
	input.BtnStep:          {50, false},
	input.BtnScene:         {51, false},
	input.BtnPattern:       {52, false},
	input.BtnEvents:        {53, false},
	input.BtnVariation:     {54, false},
	input.BtnDuplicate:     {55, false},
	input.BtnSelect:        {56, false},
	input.BtnSolo:          {57, false},
	input.BtnMute:          {58, false},
	input.BtnEncoderUp:     {59, true},
	input.BtnEncoderLeft:   {60, true},
	input.BtnEncoderRight:  {61, true},
	input.BtnEncoderDown:   {62, true},
}

// State buffers the desired value of every LED, last write wins per
// id. The zero value is all LEDs off. State is not safe for
// concurrent use; the owning facade guards it.
type State struct {
	buttons [buttonReportLen]byte
	strip   [NumStripLEDs]Color
	pads    [input.NumPads]Color
}

// SetButton records a colour and tier for a button LED. Buttons whose
// slot is single-colour take the scalar brightness of the colour.
func (s *State) SetButton(b input.Button, c Color) error {
	e, ok := buttonSlots[b]
	if !ok {
		return ErrNoSuchLED
	}
	if e.rgb {
		s.buttons[e.slot] = c.ledValue()
	} else {
		s.buttons[e.slot] = c.brightness()
	}
	return nil
}

// SetButtonBrightness records a raw intensity (0-127) for a
// single-colour button LED; RGB slots map it to white.
func (s *State) SetButtonBrightness(b input.Button, brightness uint8) error {
	e, ok := buttonSlots[b]
	if !ok {
		return ErrNoSuchLED
	}
	if e.rgb {
		s.buttons[e.slot] = fromBrightness(brightness).ledValue()
	} else {
		s.buttons[e.slot] = brightness & 0x7F
	}
	return nil
}

// SetPad records a colour for one of the 16 pad LEDs.
func (s *State) SetPad(pad uint8, c Color) error {
	if pad >= input.NumPads {
		return ErrNoSuchLED
	}
	s.pads[pad] = c
	return nil
}

// SetStrip records a colour for one of the touch strip LEDs.
func (s *State) SetStrip(i uint8, c Color) error {
	if i >= NumStripLEDs {
		return ErrNoSuchLED
	}
	s.strip[i] = c
	return nil
}

// SetAllPads records one colour for every pad.
func (s *State) SetAllPads(c Color) {
	for i := range s.pads {
		s.pads[i] = c
	}
}

// Clear turns every LED off.
func (s *State) Clear() {
	*s = State{}
}

// ButtonReport serializes the button LED table into one 0x80 report.
func (s *State) ButtonReport() []byte {
	report := make([]byte, buttonReportLen)
	copy(report, s.buttons[:])
	report[0] = buttonReportType
	return report
}

// PadReport serializes the strip and pad LEDs into one 0x81 report.
func (s *State) PadReport() []byte {
	report := make([]byte, padReportLen)
	report[0] = padReportType
	for i, c := range s.strip {
		report[1+i] = c.ledValue()
	}
	for i, c := range s.pads {
		report[1+NumStripLEDs+i] = c.ledValue()
	}
	return report
}

func fromBrightness(brightness uint8) Color {
	if brightness == 0 {
		return Black()
	}
	return White(brightness > 127)
}
