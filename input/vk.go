package input

import (
	"fmt"
	"strconv"
	"strings"
)

// Vk is a Windows virtual-key code.
//
// Codes that have no named constant are still valid values; they are passed
// to the OS unchanged. Use Known to tell the two apart.
type Vk uint16

// Mouse pseudo-keys
const (
	VkMouseLeft   Vk = 0x01
	VkMouseRight  Vk = 0x02
	VkCancel      Vk = 0x03
	VkMouseMiddle Vk = 0x04
	VkMouseX1     Vk = 0x05
	VkMouseX2     Vk = 0x06
)

// Control and editing keys
const (
	VkBackspace   Vk = 0x08
	VkTab         Vk = 0x09
	VkClear       Vk = 0x0c
	VkEnter       Vk = 0x0d
	VkShift       Vk = 0x10
	VkControl     Vk = 0x11
	VkAlt         Vk = 0x12
	VkPause       Vk = 0x13
	VkCapsLock    Vk = 0x14
	VkKana        Vk = 0x15 // also Hangul
	VkImeOn       Vk = 0x16
	VkJunja       Vk = 0x17
	VkFinal       Vk = 0x18
	VkKanji       Vk = 0x19 // also Hanja
	VkImeOff      Vk = 0x1a
	VkEscape      Vk = 0x1b
	VkConvert     Vk = 0x1c
	VkNonConvert  Vk = 0x1d
	VkAccept      Vk = 0x1e
	VkModeChange  Vk = 0x1f
	VkSpace       Vk = 0x20
	VkPageUp      Vk = 0x21
	VkPageDown    Vk = 0x22
	VkEnd         Vk = 0x23
	VkHome        Vk = 0x24
	VkLeftArrow   Vk = 0x25
	VkUpArrow     Vk = 0x26
	VkRightArrow  Vk = 0x27
	VkDownArrow   Vk = 0x28
	VkSelect      Vk = 0x29
	VkPrint       Vk = 0x2a
	VkExecute     Vk = 0x2b
	VkPrintScreen Vk = 0x2c
	VkInsert      Vk = 0x2d
	VkDelete      Vk = 0x2e
	VkHelp        Vk = 0x2f
)

// Digits and letters share their ASCII codes.
const (
	Vk0 Vk = '0' + iota
	Vk1
	Vk2
	Vk3
	Vk4
	Vk5
	Vk6
	Vk7
	Vk8
	Vk9
)

const (
	VkA Vk = 'A' + iota
	VkB
	VkC
	VkD
	VkE
	VkF
	VkG
	VkH
	VkI
	VkJ
	VkK
	VkL
	VkM
	VkN
	VkO
	VkP
	VkQ
	VkR
	VkS
	VkT
	VkU
	VkV
	VkW
	VkX
	VkY
	VkZ
)

// Windows keys, numpad and function keys
const (
	VkLeftWin   Vk = 0x5b
	VkRightWin  Vk = 0x5c
	VkApps      Vk = 0x5d
	VkSleep     Vk = 0x5f
	VkNumpad0   Vk = 0x60
	VkNumpad1   Vk = 0x61
	VkNumpad2   Vk = 0x62
	VkNumpad3   Vk = 0x63
	VkNumpad4   Vk = 0x64
	VkNumpad5   Vk = 0x65
	VkNumpad6   Vk = 0x66
	VkNumpad7   Vk = 0x67
	VkNumpad8   Vk = 0x68
	VkNumpad9   Vk = 0x69
	VkMultiply  Vk = 0x6a
	VkAdd       Vk = 0x6b
	VkSeparator Vk = 0x6c
	VkSubtract  Vk = 0x6d
	VkDecimal   Vk = 0x6e
	VkDivide    Vk = 0x6f
)

const (
	VkF1 Vk = 0x70 + iota
	VkF2
	VkF3
	VkF4
	VkF5
	VkF6
	VkF7
	VkF8
	VkF9
	VkF10
	VkF11
	VkF12
	VkF13
	VkF14
	VkF15
	VkF16
	VkF17
	VkF18
	VkF19
	VkF20
	VkF21
	VkF22
	VkF23
	VkF24
)

// Locks, side-specific modifiers, browser and media keys
const (
	VkNumLock          Vk = 0x90
	VkScrollLock       Vk = 0x91
	VkLeftShift        Vk = 0xa0
	VkRightShift       Vk = 0xa1
	VkLeftControl      Vk = 0xa2
	VkRightControl     Vk = 0xa3
	VkLeftAlt          Vk = 0xa4
	VkRightAlt         Vk = 0xa5
	VkBrowserBack      Vk = 0xa6
	VkBrowserForward   Vk = 0xa7
	VkBrowserRefresh   Vk = 0xa8
	VkBrowserStop      Vk = 0xa9
	VkBrowserSearch    Vk = 0xaa
	VkBrowserFavorites Vk = 0xab
	VkBrowserHome      Vk = 0xac
	VkVolumeMute       Vk = 0xad
	VkVolumeDown       Vk = 0xae
	VkVolumeUp         Vk = 0xaf
	VkNextTrack        Vk = 0xb0
	VkPrevTrack        Vk = 0xb1
	VkMediaStop        Vk = 0xb2
	VkMediaPlayPause   Vk = 0xb3
	VkStartMail        Vk = 0xb4
	VkSelectMedia      Vk = 0xb5
	VkStartApp1        Vk = 0xb6
	VkStartApp2        Vk = 0xb7
)

// OEM keys. Their legends depend on the keyboard layout; the comments give
// the US layout.
const (
	VkOem1       Vk = 0xba // ;:
	VkOemPlus    Vk = 0xbb
	VkOemComma   Vk = 0xbc
	VkOemMinus   Vk = 0xbd
	VkOemPeriod  Vk = 0xbe
	VkOem2       Vk = 0xbf // /?
	VkOem3       Vk = 0xc0 // `~
	VkOem4       Vk = 0xdb // [{
	VkOem5       Vk = 0xdc // \|
	VkOem6       Vk = 0xdd // ]}
	VkOem7       Vk = 0xde // '"
	VkOem8       Vk = 0xdf
	VkOem102     Vk = 0xe2 // <> on ISO keyboards
	VkImeProcess Vk = 0xe5
	VkAttn       Vk = 0xf6
	VkCrSel      Vk = 0xf7
	VkExSel      Vk = 0xf8
	VkEraseEof   Vk = 0xf9
	VkPlay       Vk = 0xfa
	VkZoom       Vk = 0xfb
	VkPa1        Vk = 0xfd
	VkOemClear   Vk = 0xfe
)

// VkName maps named virtual-key codes to their canonical names.
var VkName = map[Vk]string{
	VkMouseLeft: "MouseLeft", VkMouseRight: "MouseRight", VkCancel: "Cancel",
	VkMouseMiddle: "MouseMiddle", VkMouseX1: "MouseX1", VkMouseX2: "MouseX2",

	VkBackspace:   "Backspace",
	VkTab:         "Tab",
	VkClear:       "Clear",
	VkEnter:       "Enter",
	VkShift:       "Shift",
	VkControl:     "Control",
	VkAlt:         "Alt",
	VkPause:       "Pause",
	VkCapsLock:    "CapsLock",
	VkKana:        "Kana",
	VkImeOn:       "ImeOn",
	VkJunja:       "Junja",
	VkFinal:       "Final",
	VkKanji:       "Kanji",
	VkImeOff:      "ImeOff",
	VkEscape:      "Escape",
	VkConvert:     "Convert",
	VkNonConvert:  "NonConvert",
	VkAccept:      "Accept",
	VkModeChange:  "ModeChange",
	VkSpace:       "Space",
	VkPageUp:      "PageUp",
	VkPageDown:    "PageDown",
	VkEnd:         "End",
	VkHome:        "Home",
	VkLeftArrow:   "LeftArrow",
	VkUpArrow:     "UpArrow",
	VkRightArrow:  "RightArrow",
	VkDownArrow:   "DownArrow",
	VkSelect:      "Select",
	VkPrint:       "Print",
	VkExecute:     "Execute",
	VkPrintScreen: "PrintScreen",
	VkInsert:      "Insert",
	VkDelete:      "Delete",
	VkHelp:        "Help",

	Vk0: "0", Vk1: "1", Vk2: "2", Vk3: "3", Vk4: "4",
	Vk5: "5", Vk6: "6", Vk7: "7", Vk8: "8", Vk9: "9",

	VkA: "A", VkB: "B", VkC: "C", VkD: "D", VkE: "E", VkF: "F", VkG: "G",
	VkH: "H", VkI: "I", VkJ: "J", VkK: "K", VkL: "L", VkM: "M", VkN: "N",
	VkO: "O", VkP: "P", VkQ: "Q", VkR: "R", VkS: "S", VkT: "T", VkU: "U",
	VkV: "V", VkW: "W", VkX: "X", VkY: "Y", VkZ: "Z",

	VkLeftWin:   "LeftWin",
	VkRightWin:  "RightWin",
	VkApps:      "Apps",
	VkSleep:     "Sleep",
	VkNumpad0:   "Numpad0",
	VkNumpad1:   "Numpad1",
	VkNumpad2:   "Numpad2",
	VkNumpad3:   "Numpad3",
	VkNumpad4:   "Numpad4",
	VkNumpad5:   "Numpad5",
	VkNumpad6:   "Numpad6",
	VkNumpad7:   "Numpad7",
	VkNumpad8:   "Numpad8",
	VkNumpad9:   "Numpad9",
	VkMultiply:  "Multiply",
	VkAdd:       "Add",
	VkSeparator: "Separator",
	VkSubtract:  "Subtract",
	VkDecimal:   "Decimal",
	VkDivide:    "Divide",

	VkF1: "F1", VkF2: "F2", VkF3: "F3", VkF4: "F4", VkF5: "F5", VkF6: "F6",
	VkF7: "F7", VkF8: "F8", VkF9: "F9", VkF10: "F10", VkF11: "F11", VkF12: "F12",
	VkF13: "F13", VkF14: "F14", VkF15: "F15", VkF16: "F16", VkF17: "F17", VkF18: "F18",
	VkF19: "F19", VkF20: "F20", VkF21: "F21", VkF22: "F22", VkF23: "F23", VkF24: "F24",

	VkNumLock:          "NumLock",
	VkScrollLock:       "ScrollLock",
	VkLeftShift:        "LeftShift",
	VkRightShift:       "RightShift",
	VkLeftControl:      "LeftControl",
	VkRightControl:     "RightControl",
	VkLeftAlt:          "LeftAlt",
	VkRightAlt:         "RightAlt",
	VkBrowserBack:      "BrowserBack",
	VkBrowserForward:   "BrowserForward",
	VkBrowserRefresh:   "BrowserRefresh",
	VkBrowserStop:      "BrowserStop",
	VkBrowserSearch:    "BrowserSearch",
	VkBrowserFavorites: "BrowserFavorites",
	VkBrowserHome:      "BrowserHome",
	VkVolumeMute:       "VolumeMute",
	VkVolumeDown:       "VolumeDown",
	VkVolumeUp:         "VolumeUp",
	VkNextTrack:        "NextTrack",
	VkPrevTrack:        "PrevTrack",
	VkMediaStop:        "MediaStop",
	VkMediaPlayPause:   "MediaPlayPause",
	VkStartMail:        "StartMail",
	VkSelectMedia:      "SelectMedia",
	VkStartApp1:        "StartApp1",
	VkStartApp2:        "StartApp2",

	VkOem1:       "Oem1",
	VkOemPlus:    "OemPlus",
	VkOemComma:   "OemComma",
	VkOemMinus:   "OemMinus",
	VkOemPeriod:  "OemPeriod",
	VkOem2:       "Oem2",
	VkOem3:       "Oem3",
	VkOem4:       "Oem4",
	VkOem5:       "Oem5",
	VkOem6:       "Oem6",
	VkOem7:       "Oem7",
	VkOem8:       "Oem8",
	VkOem102:     "Oem102",
	VkImeProcess: "ImeProcess",
	VkAttn:       "Attn",
	VkCrSel:      "CrSel",
	VkExSel:      "ExSel",
	VkEraseEof:   "EraseEof",
	VkPlay:       "Play",
	VkZoom:       "Zoom",
	VkPa1:        "Pa1",
	VkOemClear:   "OemClear",
}

// vkByName is the case-folded reverse of VkName plus a few common aliases.
var vkByName = func() map[string]Vk {
	m := make(map[string]Vk, len(VkName)+16)
	for vk, name := range VkName {
		m[strings.ToLower(name)] = vk
	}
	for alias, vk := range map[string]Vk{
		"ctrl": VkControl, "menu": VkAlt, "return": VkEnter, "esc": VkEscape,
		"back": VkBackspace, "left": VkLeftArrow, "right": VkRightArrow,
		"up": VkUpArrow, "down": VkDownArrow, "win": VkLeftWin, "del": VkDelete,
		"lctrl": VkLeftControl, "rctrl": VkRightControl, "lshift": VkLeftShift,
		"rshift": VkRightShift, "lalt": VkLeftAlt, "ralt": VkRightAlt,
	} {
		m[alias] = vk
	}
	return m
}()

// extendedVk lists keys that must be injected with the extended-key flag.
var extendedVk = map[Vk]struct{}{
	VkRightAlt: {}, VkRightControl: {},
	VkInsert: {}, VkDelete: {}, VkHome: {}, VkEnd: {}, VkPageUp: {}, VkPageDown: {},
	VkLeftArrow: {}, VkRightArrow: {}, VkUpArrow: {}, VkDownArrow: {},
	VkNumLock: {}, VkPause: {}, VkPrintScreen: {}, VkDivide: {},
	VkLeftWin: {}, VkBrowserSearch: {},
	VkVolumeDown: {}, VkVolumeUp: {}, VkNextTrack: {}, VkPrevTrack: {},
	VkMediaStop: {}, VkMediaPlayPause: {}, VkSelectMedia: {},
	VkStartMail: {}, VkApps: {}, VkStartApp1: {}, VkStartApp2: {},
}

// FromRaw converts a numeric virtual-key code. It never fails.
func FromRaw(code uint16) Vk { return Vk(code) }

// Raw returns the numeric code.
func (v Vk) Raw() uint16 { return uint16(v) }

// Known reports whether v is one of the named virtual keys.
func (v Vk) Known() bool {
	_, ok := VkName[v]
	return ok
}

// Extended reports whether v sits in the extended part of the keyboard
// and needs KEYEVENTF_EXTENDEDKEY to be recognized correctly.
func (v Vk) Extended() bool {
	_, ok := extendedVk[v]
	return ok
}

func (v Vk) String() string {
	if name, ok := VkName[v]; ok {
		return name
	}
	return fmt.Sprintf("Vk(0x%02x)", uint16(v))
}

// ParseVk resolves a key name case-insensitively. Hex codes ("0x41") and
// the Vk(0x..) form produced by String are accepted as well.
func ParseVk(s string) (Vk, error) {
	t := strings.ToLower(strings.TrimSpace(s))
	if vk, ok := vkByName[t]; ok {
		return vk, nil
	}
	if strings.HasPrefix(t, "vk(") && strings.HasSuffix(t, ")") {
		t = t[3 : len(t)-1]
	}
	if strings.HasPrefix(t, "0x") {
		n, err := strconv.ParseUint(t[2:], 16, 16)
		if err == nil {
			return Vk(n), nil
		}
	}
	return 0, fmt.Errorf("unknown virtual key %q", s)
}

func (v Vk) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Vk) UnmarshalText(b []byte) error {
	vk, err := ParseVk(string(b))
	if err != nil {
		return err
	}
	*v = vk
	return nil
}
