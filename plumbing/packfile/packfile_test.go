package packfile

import (
	"testing"

	"github.com/halfmoon-dev/gitobj/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeSize writes a git-style MSB-continuation varint for n.
func encodeSize(n uint64) []byte {
	out := []byte{byte(n & 0x7f)}
	n >>= 7
	for n > 0 {
		out[len(out)-1] |= 0x80
		out = append(out, byte(n&0x7f))
		n >>= 7
	}
	return out
}

// encodeCopy builds a COPY instruction copying copyLen bytes starting
// at offset. A copyLen of 0x10000 is encoded as the 0-length escape.
func encodeCopy(offset, copyLen uint32) []byte {
	offsetBytes := []byte{
		byte(offset),
		byte(offset >> 8),
		byte(offset >> 16),
		byte(offset >> 24),
	}
	encodedLen := copyLen
	if copyLen == 0x10000 {
		encodedLen = 0
	}
	lenBytes := []byte{
		byte(encodedLen),
		byte(encodedLen >> 8),
		byte(encodedLen >> 16),
	}

	instr := byte(0b_1000_0000)
	var payload []byte
	for i, b := range offsetBytes {
		if b != 0 {
			instr |= 1 << i
			payload = append(payload, b)
		}
	}
	for i, b := range lenBytes {
		if b != 0 {
			instr |= 1 << (4 + i)
			payload = append(payload, b)
		}
	}

	return append([]byte{instr}, payload...)
}

// encodeInsert builds an INSERT instruction copying data straight
// from the delta stream.
func encodeInsert(data []byte) []byte {
	return append([]byte{byte(len(data))}, data...)
}

func buildDelta(sourceSize, targetSize int, instructions ...[]byte) []byte {
	delta := append(encodeSize(uint64(sourceSize)), encodeSize(uint64(targetSize))...)
	for _, instr := range instructions {
		delta = append(delta, instr...)
	}
	return delta
}

func TestApplyDelta(t *testing.T) {
	t.Parallel()

	t.Run("insert only", func(t *testing.T) {
		t.Parallel()

		base := object.New(object.TypeBlob, []byte("hello"))
		delta := buildDelta(5, 5, encodeInsert([]byte("world")))

		out, err := applyDelta(base, delta)
		require.NoError(t, err)
		assert.Equal(t, []byte("world"), out)
	})

	t.Run("copy only", func(t *testing.T) {
		t.Parallel()

		baseContent := []byte("0123456789")
		base := object.New(object.TypeBlob, baseContent)
		delta := buildDelta(len(baseContent), 4, encodeCopy(2, 4))

		out, err := applyDelta(base, delta)
		require.NoError(t, err)
		assert.Equal(t, []byte("2345"), out)
	})

	t.Run("copy and insert combined", func(t *testing.T) {
		t.Parallel()

		baseContent := []byte("the quick brown fox")
		base := object.New(object.TypeBlob, baseContent)
		delta := buildDelta(
			len(baseContent),
			len("the slow brown fox"),
			encodeCopy(0, 4),
			encodeInsert([]byte("slow")),
			encodeCopy(9, 10),
		)

		out, err := applyDelta(base, delta)
		require.NoError(t, err)
		assert.Equal(t, []byte("the slow brown fox"), out)
	})

	t.Run("copy with encoded len of 0 means 0x10000 bytes", func(t *testing.T) {
		t.Parallel()

		baseContent := make([]byte, 0x10000)
		for i := range baseContent {
			baseContent[i] = byte(i)
		}
		base := object.New(object.TypeBlob, baseContent)
		delta := buildDelta(len(baseContent), 0x10000, encodeCopy(0, 0x10000))

		out, err := applyDelta(base, delta)
		require.NoError(t, err)
		assert.Equal(t, baseContent, out)
		assert.Len(t, out, 0x10000)
	})

	t.Run("mismatched base size is rejected", func(t *testing.T) {
		t.Parallel()

		base := object.New(object.TypeBlob, []byte("hello"))
		delta := buildDelta(99, 5, encodeInsert([]byte("world")))

		_, err := applyDelta(base, delta)
		require.Error(t, err)
	})
}

func TestReadSize(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		desc     string
		size     uint64
		wantRead int
	}{
		{desc: "fits in a single byte", size: 42, wantRead: 1},
		{desc: "needs two bytes", size: 300, wantRead: 2},
		{desc: "needs three bytes", size: 0x10000, wantRead: 3},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			data := encodeSize(tc.size)
			got, read, err := readSize(data)
			require.NoError(t, err)
			assert.Equal(t, tc.size, got)
			assert.Equal(t, tc.wantRead, read)
		})
	}
}

func TestIsMSBSet(t *testing.T) {
	t.Parallel()

	assert.True(t, isMSBSet(0b_1000_0000))
	assert.False(t, isMSBSet(0b_0111_1111))
}

func TestUnsetMSB(t *testing.T) {
	t.Parallel()

	assert.Equal(t, byte(0b_0111_1111), unsetMSB(0b_1111_1111))
}
