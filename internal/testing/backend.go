package testing

import (
	"sync"

	"github.com/Alia5/vinject/input"
)

// FakeBackend records injected batches instead of touching the OS. Its
// layout is a small US QWERTY table; extend Keys for other characters.
type FakeBackend struct {
	mu      sync.Mutex
	batches [][]input.Record

	// Accept limits how many records of each batch are accepted. Nil
	// accepts everything.
	Accept func(n int) uint32
	// Keys maps characters to packed VkKeyScan words.
	Keys map[rune]int16

	X, Y      int32
	CursorErr error
	Screen    input.Rect
}

// NewFakeBackend returns a backend with a US layout and a 1920x1080 screen.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		Keys:   USLayout(),
		Screen: input.Rect{Width: 1920, Height: 1080},
	}
}

// USLayout returns packed VkKeyScan words for the printable ASCII keys of
// a US keyboard.
func USLayout() map[rune]int16 {
	const shift = 0x100
	m := map[rune]int16{
		' ': int16(input.VkSpace), '\n': int16(input.VkEnter), '\t': int16(input.VkTab),
	}
	for c := 'a'; c <= 'z'; c++ {
		m[c] = int16(input.VkA) + int16(c-'a')
		m[c-'a'+'A'] = shift | (int16(input.VkA) + int16(c-'a'))
	}
	for c := '0'; c <= '9'; c++ {
		m[c] = int16(input.Vk0) + int16(c-'0')
	}
	for i, c := range ")!@#$%^&*(" {
		m[c] = shift | (int16(input.Vk0) + int16(i))
	}
	for _, p := range []struct {
		plain, shifted rune
		vk             input.Vk
	}{
		{';', ':', input.VkOem1},
		{'=', '+', input.VkOemPlus},
		{',', '<', input.VkOemComma},
		{'-', '_', input.VkOemMinus},
		{'.', '>', input.VkOemPeriod},
		{'/', '?', input.VkOem2},
		{'`', '~', input.VkOem3},
		{'[', '{', input.VkOem4},
		{'\\', '|', input.VkOem5},
		{']', '}', input.VkOem6},
		{'\'', '"', input.VkOem7},
	} {
		m[p.plain] = int16(p.vk)
		m[p.shifted] = shift | int16(p.vk)
	}
	return m
}

func (f *FakeBackend) SendInput(records []input.Record) (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, append([]input.Record(nil), records...))
	if f.Accept != nil {
		return f.Accept(len(records)), nil
	}
	return uint32(len(records)), nil
}

func (f *FakeBackend) LookupChar(ch uint16) int16 {
	if v, ok := f.Keys[rune(ch)]; ok {
		return v
	}
	return -1
}

func (f *FakeBackend) CursorPos() (int32, int32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CursorErr != nil {
		return 0, 0, f.CursorErr
	}
	return f.X, f.Y, nil
}

func (f *FakeBackend) SetCursorPos(x, y int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CursorErr != nil {
		return f.CursorErr
	}
	f.X, f.Y = x, y
	return nil
}

func (f *FakeBackend) VirtualScreen() input.Rect { return f.Screen }

// Batches returns a copy of every batch passed to SendInput.
func (f *FakeBackend) Batches() [][]input.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]input.Record(nil), f.batches...)
}

// Records returns all injected records flattened in call order.
func (f *FakeBackend) Records() []input.Record {
	var out []input.Record
	for _, b := range f.Batches() {
		out = append(out, b...)
	}
	return out
}

// Reset forgets recorded batches.
func (f *FakeBackend) Reset() {
	f.mu.Lock()
	f.batches = nil
	f.mu.Unlock()
}
