package input

// RecordType selects which half of the OS input union a Record fills.
type RecordType uint32

const (
	RecordMouse    RecordType = 0 // INPUT_MOUSE
	RecordKeyboard RecordType = 1 // INPUT_KEYBOARD
)

// MOUSEEVENTF_* flags
const (
	mouseMove        uint32 = 0x0001
	mouseLeftDown    uint32 = 0x0002
	mouseLeftUp      uint32 = 0x0004
	mouseRightDown   uint32 = 0x0008
	mouseRightUp     uint32 = 0x0010
	mouseMiddleDown  uint32 = 0x0020
	mouseMiddleUp    uint32 = 0x0040
	mouseXDown       uint32 = 0x0080
	mouseXUp         uint32 = 0x0100
	mouseWheel       uint32 = 0x0800
	mouseHWheel      uint32 = 0x1000
	mouseVirtualDesk uint32 = 0x4000
	mouseAbsolute    uint32 = 0x8000
)

// XBUTTON data words
const (
	xButton1 uint32 = 0x0001
	xButton2 uint32 = 0x0002
)

// KEYEVENTF_* flags
const (
	keyExtended uint32 = 0x0001
	keyUp       uint32 = 0x0002
	keyScanCode uint32 = 0x0008
)

// WheelDelta is the OS unit for one wheel notch.
const WheelDelta = 120

// Record is the flattened form of one OS input record. Keyboard records
// use Vk, Scan and Flags; mouse records use Dx, Dy, MouseData and Flags.
// Timestamp and extra info are always zero and left to the OS.
type Record struct {
	Type      RecordType
	Vk        uint16
	Scan      uint16
	Dx        int32
	Dy        int32
	MouseData uint32
	Flags     uint32
}

// Records encodes inputs in order.
func Records(inputs []Input) []Record {
	out := make([]Record, len(inputs))
	for i, in := range inputs {
		out[i] = in.Record()
	}
	return out
}
