package input

// Event is one observed input change. Events are produced per decode
// call in report order and are not retained by the decoder.
type Event interface {
	event()
}

// ButtonPressed reports a button going down.
type ButtonPressed struct {
	Button Button
}

// ButtonReleased reports a button going up.
type ButtonReleased struct {
	Button Button
}

// PadHit reports a pad leaving the idle state, whether by a strike or
// by a light touch. Pressure is the 12-bit magnitude (0-4095).
type PadHit struct {
	Pad      uint8
	Pressure uint16
}

// PadAftertouch reports a pressure change on a pad that is already
// held. It is never emitted for the transition out of idle.
type PadAftertouch struct {
	Pad      uint8
	Pressure uint16
}

// PadHitRelease reports the release of a pad that was entered with a
// strike.
type PadHitRelease struct {
	Pad uint8
}

// PadTouchRelease reports the release of a pad that was only ever
// touched, never struck. The distinction carries gesture information:
// a touch-and-lift is a different playing gesture than a strike.
type PadTouchRelease struct {
	Pad uint8
}

// KnobChanged reports a knob's new absolute position together with
// the signed step from the previous position. Delta is computed
// modulo the knob's wrap width, so a roll-over in either direction
// yields a small step, never a near-full-range jump.
type KnobChanged struct {
	Knob  Knob
	Value uint16
	Delta int
}

// StripTouch reports a touch strip finger's position and pressure.
type StripTouch struct {
	Finger   uint8
	Position uint16
	Pressure uint16
}

// AudioChanged reports movement of one of the analog audio pots.
type AudioChanged struct {
	Control AudioControl
	Value   uint16
	Delta   int
}

func (ButtonPressed) event()   {}
func (ButtonReleased) event()  {}
func (PadHit) event()          {}
func (PadAftertouch) event()   {}
func (PadHitRelease) event()   {}
func (PadTouchRelease) event() {}
func (KnobChanged) event()     {}
func (StripTouch) event()      {}
func (AudioChanged) event()    {}
