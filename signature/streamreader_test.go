package signature

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, contents []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.bin")
	require.NoError(t, os.WriteFile(path, contents, 0o644))
	return path
}

func drainReader(t *testing.T, r BlockReader) []Block {
	t.Helper()
	var blocks []Block
	for {
		h, err := r.AcquireNext()
		require.NoError(t, err)
		if h == nil {
			break
		}
		data := append([]byte(nil), h.Data()...)
		blocks = append(blocks, Block{Offset: h.Offset(), Size: h.Size(), Data: data})
		h.Release()
	}
	return blocks
}

func TestStreamReader_PartitionsFileInOrder(t *testing.T) {
	require := require.New(t)
	path := writeTempFile(t, []byte("hello world")) // 11 bytes

	r, err := NewStreamReader(path, 4, 4)
	require.NoError(err)
	defer r.Stop()

	blocks := drainReader(t, r)
	require.Len(blocks, 3)
	require.EqualValues(0, blocks[0].Offset)
	require.Equal("hell", string(blocks[0].Data))
	require.EqualValues(4, blocks[1].Offset)
	require.Equal("o wo", string(blocks[1].Data))
	require.EqualValues(8, blocks[2].Offset)
	require.Equal("rld", string(blocks[2].Data))
}

func TestStreamReader_EmptyFileYieldsNoBlocks(t *testing.T) {
	require := require.New(t)
	path := writeTempFile(t, nil)

	r, err := NewStreamReader(path, 2, 4)
	require.NoError(err)
	defer r.Stop()

	h, err := r.AcquireNext()
	require.NoError(err)
	require.Nil(h)
}

func TestStreamReader_StopUnblocksAcquireNext(t *testing.T) {
	require := require.New(t)
	path := writeTempFile(t, make([]byte, 64))

	r, err := NewStreamReader(path, 1, 8)
	require.NoError(err)

	done := make(chan struct{})
	go func() {
		for {
			h, err := r.AcquireNext()
			if err != nil || h == nil {
				break
			}
			h.Release()
		}
		close(done)
	}()

	r.Stop()
	<-done
}

func TestStreamReader_MissingFileReturnsWrappedError(t *testing.T) {
	require := require.New(t)
	_, err := NewStreamReader(filepath.Join(t.TempDir(), "does-not-exist"), 2, 4)
	require.Error(err)
}
