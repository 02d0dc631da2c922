package signature

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMmapReader_MapAllPartitionsFileInOrder(t *testing.T) {
	require := require.New(t)
	path := writeTempFile(t, []byte("hello world"))

	r, err := NewMmapReader(path, 4, true)
	require.NoError(err)
	defer r.Stop()

	blocks := drainReader(t, r)
	require.Len(blocks, 3)
	require.Equal("hell", string(blocks[0].Data))
	require.Equal("o wo", string(blocks[1].Data))
	require.Equal("rld", string(blocks[2].Data))
}

func TestMmapReader_PerBlockRequiresPageAlignedChunkSize(t *testing.T) {
	require := require.New(t)
	path := writeTempFile(t, []byte("hello world"))

	_, err := NewMmapReader(path, 4, false)
	require.ErrorIs(err, ErrUnalignedChunk)
}

func TestMmapReader_PerBlockPartitionsFileInOrder(t *testing.T) {
	require := require.New(t)
	page := pageSize()
	content := bytes.Repeat([]byte("x"), page*2+10)
	path := writeTempFile(t, content)

	r, err := NewMmapReader(path, int64(page), false)
	require.NoError(err)
	defer r.Stop()

	blocks := drainReader(t, r)
	require.Len(blocks, 3)
	require.EqualValues(0, blocks[0].Offset)
	require.EqualValues(page, blocks[0].Size)
	require.EqualValues(page, blocks[1].Offset)
	require.EqualValues(page, blocks[1].Size)
	require.EqualValues(2*page, blocks[2].Offset)
	require.EqualValues(10, blocks[2].Size)
}

func TestMmapReader_ReleaseOfUnknownBlockPanics(t *testing.T) {
	require := require.New(t)
	path := writeTempFile(t, []byte("hello world"))

	iface, err := NewMmapReader(path, int64(pageSize()), false)
	require.NoError(err)
	defer iface.Stop()

	r := iface.(*baseReader).impl.(*mmapReader)
	require.Panics(func() {
		r.releaseRaw(Block{Offset: 0, Size: 4, Data: []byte("nope")})
	})
}

func TestMmapReader_MissingFileReturnsWrappedError(t *testing.T) {
	require := require.New(t)
	_, err := NewMmapReader(filepath.Join(t.TempDir(), "does-not-exist"), 4, true)
	require.Error(err)
}
