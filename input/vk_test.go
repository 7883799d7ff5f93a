package input_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/vinject/input"
)

func TestVkRawRoundTrip(t *testing.T) {
	for vk := range input.VkName {
		assert.Equal(t, vk, input.FromRaw(vk.Raw()), "round trip of %s", vk)
	}
	for code := 0; code <= 0xffff; code++ {
		require.Equal(t, uint16(code), input.FromRaw(uint16(code)).Raw())
	}
}

func TestVkUnnamedCode(t *testing.T) {
	vk := input.FromRaw(0x07)
	assert.False(t, vk.Known())
	assert.Equal(t, uint16(0x07), vk.Raw())
	assert.Equal(t, "Vk(0x07)", vk.String())

	parsed, err := input.ParseVk(vk.String())
	require.NoError(t, err)
	assert.Equal(t, vk, parsed)
}

func TestVkConstants(t *testing.T) {
	tests := []struct {
		vk   input.Vk
		code uint16
	}{
		{input.VkMouseLeft, 0x01},
		{input.VkEnter, 0x0d},
		{input.VkShift, 0x10},
		{input.VkSpace, 0x20},
		{input.Vk0, 0x30},
		{input.Vk9, 0x39},
		{input.VkA, 0x41},
		{input.VkZ, 0x5a},
		{input.VkF1, 0x70},
		{input.VkF24, 0x87},
		{input.VkRightAlt, 0xa5},
		{input.VkOem102, 0xe2},
		{input.VkOemClear, 0xfe},
	}
	for _, tt := range tests {
		t.Run(tt.vk.String(), func(t *testing.T) {
			assert.Equal(t, tt.code, tt.vk.Raw())
			assert.True(t, tt.vk.Known())
		})
	}
}

func TestParseVk(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    input.Vk
		wantErr bool
	}{
		{name: "canonical", in: "Enter", want: input.VkEnter},
		{name: "lower case", in: "pageup", want: input.VkPageUp},
		{name: "alias", in: "ctrl", want: input.VkControl},
		{name: "hex", in: "0x41", want: input.VkA},
		{name: "unknown", in: "hyper", wantErr: true},
		{name: "bad hex", in: "0xzz", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := input.ParseVk(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVkExtended(t *testing.T) {
	assert.True(t, input.VkLeftArrow.Extended())
	assert.True(t, input.VkRightControl.Extended())
	assert.True(t, input.VkDivide.Extended())
	assert.False(t, input.VkZ.Extended())
	assert.False(t, input.VkLeftControl.Extended())
}

func TestVkJSON(t *testing.T) {
	b, err := json.Marshal([]input.Vk{input.VkA, input.VkMediaPlayPause, 0xe8})
	require.NoError(t, err)
	assert.JSONEq(t, `["A","MediaPlayPause","Vk(0xe8)"]`, string(b))

	var back []input.Vk
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, []input.Vk{input.VkA, input.VkMediaPlayPause, 0xe8}, back)
}
