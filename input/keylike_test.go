package input_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/vinject/input"
	th "github.com/Alia5/vinject/internal/testing"
)

func TestCharInputs(t *testing.T) {
	layout := th.NewFakeBackend()
	layout.Keys['@'] = 0x0600 | int16(input.VkQ) // AltGr+Q on German layouts

	tests := []struct {
		name   string
		ch     rune
		action input.Action
		want   []input.Input
	}{
		{
			name:   "plain press",
			ch:     'a',
			action: input.Press,
			want:   []input.Input{input.FromVk(input.VkA, input.Press)},
		},
		{
			name:   "shifted press",
			ch:     'A',
			action: input.Press,
			want: []input.Input{
				input.FromVk(input.VkShift, input.Press),
				input.FromVk(input.VkA, input.Press),
			},
		},
		{
			name:   "shifted release",
			ch:     'A',
			action: input.Release,
			want: []input.Input{
				input.FromVk(input.VkA, input.Release),
				input.FromVk(input.VkShift, input.Release),
			},
		},
		{
			name:   "ctrl alt press",
			ch:     '@',
			action: input.Press,
			want: []input.Input{
				input.FromVk(input.VkControl, input.Press),
				input.FromVk(input.VkAlt, input.Press),
				input.FromVk(input.VkQ, input.Press),
			},
		},
		{
			name:   "ctrl alt release",
			ch:     '@',
			action: input.Release,
			want: []input.Input{
				input.FromVk(input.VkQ, input.Release),
				input.FromVk(input.VkAlt, input.Release),
				input.FromVk(input.VkControl, input.Release),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := input.FromChar(layout, tt.ch, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCharUnmappable(t *testing.T) {
	layout := th.NewFakeBackend()
	layout.Keys['ß'] = 0x0800 | int16(input.VkOem4) // needs Hankaku

	for _, ch := range []rune{'€', '😀', 'ß', 0xd800} {
		_, err := input.Char(ch).Inputs(layout, input.Press)
		require.Error(t, err, "%q", ch)
		assert.ErrorIs(t, err, input.ErrUnmappableChar)

		var ce *input.CharError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, ch, ce.Char)
	}
}

func TestVkAndButtonInputs(t *testing.T) {
	got, err := input.VkF5.Inputs(nil, input.Release)
	require.NoError(t, err)
	assert.Equal(t, []input.Input{input.FromVk(input.VkF5, input.Release)}, got)

	got, err = input.ButtonX2.Inputs(nil, input.Press)
	require.NoError(t, err)
	assert.Equal(t, []input.Input{input.FromButton(input.ButtonX2, input.Press)}, got)
}

func TestParseKeylike(t *testing.T) {
	tests := []struct {
		in      string
		want    input.Keylike
		wantErr bool
	}{
		{in: "a", want: input.Char('a')},
		{in: "A", want: input.Char('A')},
		{in: "é", want: input.Char('é')},
		{in: "shift", want: input.VkShift},
		{in: "F12", want: input.VkF12},
		{in: "mouse.right", want: input.ButtonRight},
		{in: "Mouse.X1", want: input.ButtonX1},
		{in: "mouse.fourth", wantErr: true},
		{in: "", wantErr: true},
		{in: "nope", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := input.ParseKeylike(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
