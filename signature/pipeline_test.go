package signature

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPipeline_EmitsRecordsInOrderViaCallback(t *testing.T) {
	require := require.New(t)
	path := writeTempFile(t, []byte("hello world")) // 11 bytes: blocks of size 4, 4 and 3

	reader, err := NewStreamReader(path, 4, 4)
	require.NoError(err)

	p := NewPipeline(reader, NewHasher(EHasherKind.Crc32()), 4, nil)

	var got []Record
	done := make(chan struct{})
	p.SetRecordsCallback(func(r Record) {
		got = append(got, r)
		if len(got) == 3 {
			close(done)
		}
	})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline did not emit all 3 records in time")
	}

	status, err := p.Wait(time.Second)
	require.NoError(err)
	require.Equal(EWaitStatus.Finished(), status)

	require.Len(got, 3)
	require.True(sort.SliceIsSorted(got, func(i, j int) bool { return got[i].Offset < got[j].Offset }))
	require.EqualValues(0, got[0].Offset)
	require.EqualValues(4, got[1].Offset)
	require.EqualValues(8, got[2].Offset)
}

func TestPipeline_WaitRecordPopsWithoutCallback(t *testing.T) {
	require := require.New(t)
	path := writeTempFile(t, []byte("ab"))

	reader, err := NewStreamReader(path, 2, 1)
	require.NoError(err)

	p := NewPipeline(reader, NewHasher(EHasherKind.Crc32()), 2, nil)

	r1, status, err := p.WaitRecord(5 * time.Second)
	require.NoError(err)
	require.Equal(EWaitStatus.Ready(), status)
	require.EqualValues(0, r1.Offset)

	r2, status, err := p.WaitRecord(5 * time.Second)
	require.NoError(err)
	require.Equal(EWaitStatus.Ready(), status)
	require.EqualValues(1, r2.Offset)

	_, status, err = p.WaitRecord(time.Second)
	require.NoError(err)
	require.Equal(EWaitStatus.Finished(), status)
}

func TestPipeline_CancelSyncStopsWorkers(t *testing.T) {
	require := require.New(t)
	path := writeTempFile(t, make([]byte, 1<<20))

	reader, err := NewStreamReader(path, 4, 4096)
	require.NoError(err)

	p := NewPipeline(reader, NewHasher(EHasherKind.Crc32()), 4, nil)

	err = p.Cancel(true)
	require.NoError(err)

	status, err := p.Wait(time.Second)
	require.NoError(err)
	require.Equal(EWaitStatus.Canceled(), status)
}

// failingReader hands out nothing and fails every AcquireNext call, the way
// a streaming reader would report a read error.
type failingReader struct{ err error }

func (f *failingReader) AcquireNext() (*BlockHandle, error) { return nil, f.err }
func (f *failingReader) Stop()                              {}

func TestPipeline_CancelSyncReRaisesCapturedException(t *testing.T) {
	require := require.New(t)
	boom := errors.New("boom")

	p := NewPipeline(&failingReader{err: boom}, NewHasher(EHasherKind.Crc32()), 1, nil)

	err := p.Cancel(true)
	require.Equal(boom, err)

	// the exception was consumed: a second Cancel sees nothing left to raise.
	require.NoError(p.Cancel(true))
}
