package input_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/vinject/input"
	th "github.com/Alia5/vinject/internal/testing"
)

func newDispatcher(t *testing.T) (*input.Dispatcher, *th.FakeBackend) {
	t.Helper()
	b := th.NewFakeBackend()
	return input.NewDispatcher(b, nil), b
}

func TestSendInputsEmpty(t *testing.T) {
	d, b := newDispatcher(t)
	assert.Equal(t, uint32(0), d.SendInputs(nil))
	assert.Equal(t, uint32(0), d.SendInputs([]input.Input{}))
	assert.Empty(t, b.Batches(), "empty batch must not reach the OS")
}

func TestSendInputsPreservesOrder(t *testing.T) {
	d, b := newDispatcher(t)
	inputs := []input.Input{
		input.FromMotion(input.Relative(1, 1)),
		input.FromVk(input.VkX, input.Press),
		input.FromButton(input.ButtonLeft, input.Press),
		input.FromVk(input.VkX, input.Release),
		input.FromWheel(1, input.Vertical),
	}
	n := d.SendInputs(inputs)
	assert.Equal(t, uint32(len(inputs)), n)

	batches := b.Batches()
	require.Len(t, batches, 1, "one batch per call")
	assert.Equal(t, input.Records(inputs), batches[0])
}

func TestSendInputsPartialCount(t *testing.T) {
	d, b := newDispatcher(t)
	b.Accept = func(n int) uint32 { return uint32(n) - 1 }

	n := d.SendInputs([]input.Input{
		input.FromVk(input.VkA, input.Press),
		input.FromVk(input.VkA, input.Release),
		input.FromVk(input.VkB, input.Press),
	})
	assert.Equal(t, uint32(2), n)
}

func TestPressReleaseShift(t *testing.T) {
	d, b := newDispatcher(t)

	n, err := d.Press(input.VkShift)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), n)

	n, err = d.Release(input.VkShift)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), n)

	assert.Equal(t, []input.Record{
		{Type: input.RecordKeyboard, Vk: 0x10},
		{Type: input.RecordKeyboard, Vk: 0x10, Flags: 0x2},
	}, b.Records())
}

func TestSend(t *testing.T) {
	t.Run("shifted char dispatches two batches", func(t *testing.T) {
		d, b := newDispatcher(t)
		n, err := d.Send(input.Char('A'))
		require.NoError(t, err)
		assert.Equal(t, uint32(4), n)

		batches := b.Batches()
		require.Len(t, batches, 2)
		assert.Equal(t, []input.Record{
			{Type: input.RecordKeyboard, Vk: 0x10},
			{Type: input.RecordKeyboard, Vk: 0x41},
		}, batches[0])
		assert.Equal(t, []input.Record{
			{Type: input.RecordKeyboard, Vk: 0x41, Flags: 0x2},
			{Type: input.RecordKeyboard, Vk: 0x10, Flags: 0x2},
		}, batches[1])
	})

	t.Run("short press still releases", func(t *testing.T) {
		d, b := newDispatcher(t)
		b.Accept = func(int) uint32 { return 1 }
		n, err := d.Send(input.Char('A'))
		require.NoError(t, err)
		assert.Equal(t, uint32(1), n, "only the press count is reported")

		batches := b.Batches()
		require.Len(t, batches, 2)
		assert.Equal(t, []input.Record{
			{Type: input.RecordKeyboard, Vk: 0x41, Flags: 0x2},
			{Type: input.RecordKeyboard, Vk: 0x10, Flags: 0x2},
		}, batches[1], "shift is lifted")
	})

	t.Run("blocked press", func(t *testing.T) {
		d, b := newDispatcher(t)
		b.Accept = func(int) uint32 { return 0 }
		n, err := d.Send(input.VkEnter)
		require.NoError(t, err)
		assert.Equal(t, uint32(0), n)
		assert.Len(t, b.Batches(), 2)
	})

	t.Run("unmappable char injects nothing", func(t *testing.T) {
		d, b := newDispatcher(t)
		n, err := d.Send(input.Char('€'))
		assert.ErrorIs(t, err, input.ErrUnmappableChar)
		assert.Equal(t, uint32(0), n)
		assert.Empty(t, b.Batches())
	})
}

func TestSendKeys(t *testing.T) {
	d, b := newDispatcher(t)
	n, err := d.SendKeys(input.VkControl, input.Char('c'), input.ButtonLeft)
	require.NoError(t, err)
	assert.Equal(t, uint32(6), n)
	require.Len(t, b.Batches(), 1)

	b.Reset()
	_, err = d.SendKeys(input.Char('x'), input.Char('€'))
	assert.ErrorIs(t, err, input.ErrUnmappableChar)
	assert.Empty(t, b.Batches(), "resolution failure aborts the whole batch")
}

func TestSendStr(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		d, b := newDispatcher(t)
		n, err := d.SendStr("")
		require.NoError(t, err)
		assert.Equal(t, uint32(0), n)
		assert.Empty(t, b.Batches())
	})

	t.Run("mixed case", func(t *testing.T) {
		d, b := newDispatcher(t)
		n, err := d.SendStr("Hi!")
		require.NoError(t, err)
		// H: shift+h press/release (4), i: 2, !: shift+1 (4)
		assert.Equal(t, uint32(10), n)
		assert.Len(t, b.Batches(), 6)
	})

	t.Run("stops at first unmappable char", func(t *testing.T) {
		d, b := newDispatcher(t)
		delete(b.Keys, 'B')
		n, err := d.SendStr("ABC")
		require.Error(t, err)
		assert.ErrorIs(t, err, input.ErrUnmappableChar)

		var ce *input.CharError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, 'B', ce.Char)
		assert.Equal(t, uint32(4), n, "only A was typed")
		assert.Len(t, b.Batches(), 2)
	})
}

func TestSendInputsRejectsInvalidBatch(t *testing.T) {
	d, b := newDispatcher(t)
	n := d.SendInputs([]input.Input{
		input.FromVk(input.VkA, input.Press),
		{Kind: 7},
	})
	assert.Zero(t, n)
	assert.Empty(t, b.Batches(), "nothing reaches the OS")

	_, err := d.Click(input.Button(9))
	assert.ErrorIs(t, err, input.ErrInvalidInput)
	assert.Empty(t, b.Batches())
}
