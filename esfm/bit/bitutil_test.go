package bit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombine(t *testing.T) {
	assert.Equal(t, uint16(0x0312), Combine(0x03, 0x12))
	assert.Equal(t, uint16(0xff00), Combine(0xff, 0x00))
}

func TestIsSet(t *testing.T) {
	assert.True(t, IsSet(0, 0x01))
	assert.True(t, IsSet(7, 0x80))
	assert.False(t, IsSet(3, 0xf7))
}

func TestSetReset(t *testing.T) {
	assert.Equal(t, uint8(0x81), Set(7, 0x01))
	assert.Equal(t, uint8(0x01), Reset(7, 0x81))
	assert.Equal(t, uint8(0x81), Set(0, 0x81))
}

func TestGetBitValue(t *testing.T) {
	assert.Equal(t, uint8(1), GetBitValue(4, 0x10))
	assert.Equal(t, uint8(0), GetBitValue(4, 0xef))
}

func TestExtractBits(t *testing.T) {
	assert.Equal(t, uint8(0b101), ExtractBits(0b11010110, 6, 4))
	assert.Equal(t, uint8(0b110), ExtractBits(0b11010110, 2, 0))
	assert.Equal(t, uint8(0xff), ExtractBits(0xff, 7, 0))
}

func TestPackFlag(t *testing.T) {
	assert.Equal(t, uint8(0x40), PackFlag(6, true))
	assert.Equal(t, uint8(0x00), PackFlag(6, false))
}
