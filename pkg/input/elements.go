// Package input decodes raw MK3 input reports into typed events by
// diffing each report against the previously decoded state. The device
// sends two report types on the interrupt IN endpoint: 0x01 carries
// buttons, knobs, the touch strip and the audio pots; 0x02 carries pad
// pressure entries.
package input

// Button identifies one momentary input element. Knob touch contacts
// and the pedal/microphone jack sense bits report through the same
// bitmask region and are treated as buttons.
type Button uint8

const (
	BtnEncoderPush Button = iota
	BtnEncoderUp
	BtnEncoderRight
	BtnEncoderDown
	BtnEncoderLeft
	BtnShift
	BtnGroupA
	BtnGroupB
	BtnGroupC
	BtnGroupD
	BtnGroupE
	BtnGroupF
	BtnGroupG
	BtnGroupH
	BtnNotes
	BtnVolume
	BtnSwing
	BtnTempo
	BtnNoteRepeat
	BtnLock
	BtnPadMode
	BtnKeyboard
	BtnChords
	BtnStep
	BtnFixedVel
	BtnScene
	BtnPattern
	BtnEvents
	BtnVariation
	BtnDuplicate
	BtnSelect
	BtnSolo
	BtnMute
	BtnPitch
	BtnMod
	BtnPerform
	BtnRestart
	BtnErase
	BtnTap
	BtnFollow
	BtnPlay
	BtnRec
	BtnStop
	BtnMacro
	BtnSettings
	BtnArrowRight
	BtnSampling
	BtnMixer
	BtnPlugin
	BtnChannelMidi
	BtnArranger
	BtnBrowserPlugin
	BtnArrowLeft
	BtnFileSave
	BtnAuto
	BtnDisplay1
	BtnDisplay2
	BtnDisplay3
	BtnDisplay4
	BtnDisplay5
	BtnDisplay6
	BtnDisplay7
	BtnDisplay8
	BtnPedal
	BtnMicrophone
	BtnMainKnobTouch
	BtnKnob1Touch
	BtnKnob2Touch
	BtnKnob3Touch
	BtnKnob4Touch
	BtnKnob5Touch
	BtnKnob6Touch
	BtnKnob7Touch
	BtnKnob8Touch

	numButtons
)

var buttonNames = map[Button]string{
	BtnEncoderPush:   "EncoderPush",
	BtnEncoderUp:     "EncoderUp",
	BtnEncoderRight:  "EncoderRight",
	BtnEncoderDown:   "EncoderDown",
	BtnEncoderLeft:   "EncoderLeft",
	BtnShift:         "Shift",
	BtnGroupA:        "GroupA",
	BtnGroupB:        "GroupB",
	BtnGroupC:        "GroupC",
	BtnGroupD:        "GroupD",
	BtnGroupE:        "GroupE",
	BtnGroupF:        "GroupF",
	BtnGroupG:        "GroupG",
	BtnGroupH:        "GroupH",
	BtnNotes:         "Notes",
	BtnVolume:        "Volume",
	BtnSwing:         "Swing",
	BtnTempo:         "Tempo",
	BtnNoteRepeat:    "NoteRepeat",
	BtnLock:          "Lock",
	BtnPadMode:       "PadMode",
	BtnKeyboard:      "Keyboard",
	BtnChords:        "Chords",
	BtnStep:          "Step",
	BtnFixedVel:      "FixedVel",
	BtnScene:         "Scene",
	BtnPattern:       "Pattern",
	BtnEvents:        "Events",
	BtnVariation:     "Variation",
	BtnDuplicate:     "Duplicate",
	BtnSelect:        "Select",
	BtnSolo:          "Solo",
	BtnMute:          "Mute",
	BtnPitch:         "Pitch",
	BtnMod:           "Mod",
	BtnPerform:       "Perform",
	BtnRestart:       "Restart",
	BtnErase:         "Erase",
	BtnTap:           "Tap",
	BtnFollow:        "Follow",
	BtnPlay:          "Play",
	BtnRec:           "Rec",
	BtnStop:          "Stop",
	BtnMacro:         "Macro",
	BtnSettings:      "Settings",
	BtnArrowRight:    "ArrowRight",
	BtnSampling:      "Sampling",
	BtnMixer:         "Mixer",
	BtnPlugin:        "Plugin",
	BtnChannelMidi:   "ChannelMidi",
	BtnArranger:      "Arranger",
	BtnBrowserPlugin: "BrowserPlugin",
	BtnArrowLeft:     "ArrowLeft",
	BtnFileSave:      "FileSave",
	BtnAuto:          "Auto",
	BtnDisplay1:      "Display1",
	BtnDisplay2:      "Display2",
	BtnDisplay3:      "Display3",
	BtnDisplay4:      "Display4",
	BtnDisplay5:      "Display5",
	BtnDisplay6:      "Display6",
	BtnDisplay7:      "Display7",
	BtnDisplay8:      "Display8",
	BtnPedal:         "Pedal",
	BtnMicrophone:    "Microphone",
	BtnMainKnobTouch: "MainKnobTouch",
	BtnKnob1Touch:    "Knob1Touch",
	BtnKnob2Touch:    "Knob2Touch",
	BtnKnob3Touch:    "Knob3Touch",
	BtnKnob4Touch:    "Knob4Touch",
	BtnKnob5Touch:    "Knob5Touch",
	BtnKnob6Touch:    "Knob6Touch",
	BtnKnob7Touch:    "Knob7Touch",
	BtnKnob8Touch:    "Knob8Touch",
}

func (b Button) String() string {
	if n, ok := buttonNames[b]; ok {
		return n
	}
	return "Unknown"
}

// buttonBits is the static element-to-offset table of the bitmask
// region of report 0x01 (bytes 1-10), in report order. Diffing walks
// this table top to bottom, so events come out in report order.
var buttonBits = []struct {
	byteIdx int
	mask    byte
	btn     Button
}{
	{1, 0x01, BtnEncoderPush},
	{1, 0x02, BtnPedal},
	{1, 0x04, BtnEncoderUp},
	{1, 0x08, BtnEncoderRight},
	{1, 0x10, BtnEncoderDown},
	{1, 0x20, BtnEncoderLeft},
	{1, 0x40, BtnShift},
	{1, 0x80, BtnDisplay8},

	{2, 0x01, BtnGroupA},
	{2, 0x02, BtnGroupB},
	{2, 0x04, BtnGroupC},
	{2, 0x08, BtnGroupD},
	{2, 0x10, BtnGroupE},
	{2, 0x20, BtnGroupF},
	{2, 0x40, BtnGroupG},
	{2, 0x80, BtnGroupH},

	{3, 0x01, BtnNotes},
	{3, 0x02, BtnVolume},
	{3, 0x04, BtnSwing},
	{3, 0x08, BtnTempo},
	{3, 0x10, BtnNoteRepeat},
	{3, 0x20, BtnLock},

	{4, 0x01, BtnPadMode},
	{4, 0x02, BtnKeyboard},
	{4, 0x04, BtnChords},
	{4, 0x08, BtnStep},
	{4, 0x10, BtnFixedVel},
	{4, 0x20, BtnScene},
	{4, 0x40, BtnPattern},
	{4, 0x80, BtnEvents},

	{5, 0x01, BtnMicrophone},
	{5, 0x02, BtnVariation},
	{5, 0x04, BtnDuplicate},
	{5, 0x08, BtnSelect},
	{5, 0x10, BtnSolo},
	{5, 0x20, BtnMute},
	{5, 0x40, BtnPitch},
	{5, 0x80, BtnMod},

	{6, 0x01, BtnPerform},
	{6, 0x02, BtnRestart},
	{6, 0x04, BtnErase},
	{6, 0x08, BtnTap},
	{6, 0x10, BtnFollow},
	{6, 0x20, BtnPlay},
	{6, 0x40, BtnRec},
	{6, 0x80, BtnStop},

	{7, 0x01, BtnMacro},
	{7, 0x02, BtnSettings},
	{7, 0x04, BtnArrowRight},
	{7, 0x08, BtnSampling},
	{7, 0x10, BtnMixer},
	{7, 0x20, BtnPlugin},

	{8, 0x01, BtnChannelMidi},
	{8, 0x02, BtnArranger},
	{8, 0x04, BtnBrowserPlugin},
	{8, 0x08, BtnArrowLeft},
	{8, 0x10, BtnFileSave},
	{8, 0x20, BtnAuto},

	{9, 0x01, BtnDisplay1},
	{9, 0x02, BtnDisplay2},
	{9, 0x04, BtnDisplay3},
	{9, 0x08, BtnDisplay4},
	{9, 0x10, BtnDisplay5},
	{9, 0x20, BtnDisplay6},
	{9, 0x40, BtnDisplay7},
	{9, 0x80, BtnMainKnobTouch},

	{10, 0x01, BtnKnob8Touch},
	{10, 0x02, BtnKnob7Touch},
	{10, 0x04, BtnKnob6Touch},
	{10, 0x08, BtnKnob5Touch},
	{10, 0x10, BtnKnob4Touch},
	{10, 0x20, BtnKnob3Touch},
	{10, 0x40, BtnKnob2Touch},
	{10, 0x80, BtnKnob1Touch},
}

// Knob identifies a rotary encoder: 0-7 are the eight display knobs
// (10-bit absolute position, wrapping at 1024), MainEncoder is the
// push encoder (4-bit position, wrapping at 16).
type Knob uint8

// MainEncoder is the Knob id of the central push encoder.
const MainEncoder Knob = 8

// NumKnobs counts the display knobs, excluding the main encoder.
const NumKnobs = 8

func (k Knob) String() string {
	if k == MainEncoder {
		return "MainEncoder"
	}
	return "Knob" + string('1'+rune(k))
}

// wrap returns the modulus of the knob's absolute position.
func (k Knob) wrap() int {
	if k == MainEncoder {
		return 16
	}
	return 1024
}

// AudioControl identifies one of the analog pots reported in the tail
// of report 0x01.
type AudioControl uint8

const (
	MicGain AudioControl = iota
	HeadphoneVolume
	MasterVolume
)

func (a AudioControl) String() string {
	switch a {
	case MicGain:
		return "MicGain"
	case HeadphoneVolume:
		return "HeadphoneVolume"
	case MasterVolume:
		return "MasterVolume"
	}
	return "Unknown"
}
