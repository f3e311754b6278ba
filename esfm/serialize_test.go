package esfm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	c := New()
	programSine(c, 0, 0, 0x120, 4, 1)
	c.WriteRegister(slotReg(7, 3, 7), 0xf0)
	keyOn(c, 0)
	keyOn(c, 7)
	renderFrames(c, 500)

	buf := make([]byte, c.SerializeSize())
	require.NoError(t, c.Serialize(buf))

	restored := New()
	require.NoError(t, restored.Deserialize(buf))

	for i := 0; i < 500; i++ {
		l1, r1 := c.GenerateSample()
		l2, r2 := restored.GenerateSample()
		require.Equal(t, l1, l2, "left diverges at sample %d after restore", i)
		require.Equal(t, r1, r2, "right diverges at sample %d after restore", i)
	}
}

func TestSnapshotDrainsWriteBuffer(t *testing.T) {
	c := New()
	c.WriteRegisterBuffered(slotReg(0, 0, 1), 0x3f)

	buf := make([]byte, c.SerializeSize())
	require.NoError(t, c.Serialize(buf))

	restored := New()
	require.NoError(t, restored.Deserialize(buf))
	assert.Equal(t, uint8(0x3f), restored.ReadRegister(slotReg(0, 0, 1)))
	assert.Empty(t, restored.writeBuf)
}

func TestSnapshotErrors(t *testing.T) {
	c := New()

	small := make([]byte, c.SerializeSize()-1)
	assert.ErrorIs(t, c.Serialize(small), errSnapshotSize)
	assert.ErrorIs(t, c.Deserialize(small), errSnapshotSize)

	buf := make([]byte, c.SerializeSize())
	require.NoError(t, c.Serialize(buf))
	buf[0] = 0x7f
	assert.ErrorIs(t, c.Deserialize(buf), errSnapshotVersion)
}

func TestSerializeSizeIsStable(t *testing.T) {
	c := New()
	size := c.SerializeSize()
	assert.Greater(t, size, 0)

	programSine(c, 0, 0, 0x120, 4, 1)
	keyOn(c, 0)
	renderFrames(c, 100)
	assert.Equal(t, size, c.SerializeSize(), "snapshot size must not depend on state")
}
