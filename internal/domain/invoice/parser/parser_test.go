package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMobile(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"spaced groups", "0400 936 296", "0400936296"},
		{"already normalized", "0403061668", "0403061668"},
		{"punctuation stripped", "0400-936-296", "0400936296"},
		{"country code keeps last ten digits", "+61400936296", "1400936296"},
		{"short numbers pass through", "1234", "1234"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeMobile(tt.raw))
		})
	}
}

func TestForCarrier(t *testing.T) {
	p, ok := ForCarrier("Telstra")
	assert.True(t, ok)
	assert.IsType(t, TelstraParser{}, p)

	p, ok = ForCarrier("Optus")
	assert.True(t, ok)
	assert.IsType(t, OptusParser{}, p)

	p, ok = ForCarrier("Vodafone")
	assert.True(t, ok)
	assert.IsType(t, VodafoneParser{}, p)

	p, ok = ForCarrier("Unknown")
	assert.False(t, ok)
	assert.Nil(t, p)
}
