package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRawReader struct {
	released []Block
	stopped  bool
}

func (f *fakeRawReader) acquireRaw() (Block, bool, error) { return Block{}, false, nil }
func (f *fakeRawReader) releaseRaw(b Block)                { f.released = append(f.released, b) }
func (f *fakeRawReader) stop()                             { f.stopped = true }

func TestBlockHandle_DataAndOffsetSize(t *testing.T) {
	a := assert.New(t)
	reader := &fakeRawReader{}
	h := newBlockHandle(reader, Block{Offset: 16, Size: 4, Data: []byte("abcd")})

	a.EqualValues(16, h.Offset())
	a.EqualValues(4, h.Size())
	a.Equal([]byte("abcd"), h.Data())
}

func TestBlockHandle_ReleaseIsIdempotent(t *testing.T) {
	a := assert.New(t)
	reader := &fakeRawReader{}
	h := newBlockHandle(reader, Block{Offset: 0, Size: 2, Data: []byte("ab")})

	h.Release()
	h.Release()

	a.Len(reader.released, 1, "only the first Release call should forward to the reader")
}

func TestBlockHandle_DataAfterReleasePanics(t *testing.T) {
	require := require.New(t)
	reader := &fakeRawReader{}
	h := newBlockHandle(reader, Block{Offset: 0, Size: 2, Data: []byte("ab")})
	h.Release()

	require.Panics(func() { h.Data() })
}
