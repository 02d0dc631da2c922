package signature

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregator_TryPopInOrderRegardlessOfPushOrder(t *testing.T) {
	require := require.New(t)
	a := newAggregator()

	a.Push(Record{Offset: 4, Size: 4})
	a.Push(Record{Offset: 0, Size: 4})
	a.Push(Record{Offset: 8, Size: 2})

	r1, status, err := a.TryPop(time.Second)
	require.NoError(err)
	require.Equal(EWaitStatus.Ready(), status)
	require.EqualValues(0, r1.Offset)

	r2, status, err := a.TryPop(time.Second)
	require.NoError(err)
	require.Equal(EWaitStatus.Ready(), status)
	require.EqualValues(4, r2.Offset)

	r3, status, err := a.TryPop(time.Second)
	require.NoError(err)
	require.Equal(EWaitStatus.Ready(), status)
	require.EqualValues(8, r3.Offset)
}

func TestAggregator_TryPopTimesOutWhenGapPending(t *testing.T) {
	require := require.New(t)
	a := newAggregator()

	// offset 4 arrives before offset 0: nothing is in order yet.
	a.Push(Record{Offset: 4, Size: 4})

	_, status, err := a.TryPop(30 * time.Millisecond)
	require.NoError(err)
	require.Equal(EWaitStatus.Timeout(), status)
}

func TestAggregator_FrozenWithNothingPendingReportsFinished(t *testing.T) {
	require := require.New(t)
	a := newAggregator()
	a.SetFrozen()

	_, status, err := a.TryPop(time.Second)
	require.NoError(err)
	require.Equal(EWaitStatus.Finished(), status)
}

func TestAggregator_CleanedDiscardsPendingAndReportsCanceled(t *testing.T) {
	require := require.New(t)
	a := newAggregator()
	a.Push(Record{Offset: 0, Size: 4})
	a.SetCleaned()

	_, status, err := a.TryPop(time.Second)
	require.NoError(err)
	require.Equal(EWaitStatus.Canceled(), status)
}

func TestAggregator_PushAfterCleanedReturnsFalse(t *testing.T) {
	a := newAggregator()
	a.SetCleaned()
	assert.False(t, a.Push(Record{Offset: 0, Size: 4}))
}

func TestAggregator_PushAfterFreezePanics(t *testing.T) {
	a := newAggregator()
	a.SetFrozen()
	assert.Panics(t, func() { a.Push(Record{Offset: 0, Size: 4}) })
}

func TestAggregator_ExceptionIsReRaisedOnce(t *testing.T) {
	require := require.New(t)
	a := newAggregator()
	boom := assert.AnError
	a.SetException(boom)

	_, _, err := a.TryPop(time.Second)
	require.Equal(boom, err)

	// The second waiter sees no error: it was consumed by the first.
	_, status, err := a.TryPop(30 * time.Millisecond)
	require.NoError(err)
	require.Equal(EWaitStatus.Timeout(), status)
}

func TestAggregator_CallbackDrainsInOrder(t *testing.T) {
	require := require.New(t)
	a := newAggregator()

	var seen []int64
	a.SetCallback(func(r Record) { seen = append(seen, r.Offset) })

	a.Push(Record{Offset: 4, Size: 4})
	require.Empty(seen, "offset 4 is not yet in order")

	a.Push(Record{Offset: 0, Size: 4})
	require.Equal([]int64{0, 4}, seen)
}

func TestAggregator_WaitForAnyWakesOnFreeze(t *testing.T) {
	require := require.New(t)
	a := newAggregator()

	done := make(chan WaitStatus, 1)
	go func() {
		status, _ := a.WaitForAny(time.Second)
		done <- status
	}()

	time.Sleep(20 * time.Millisecond)
	a.SetFrozen()

	select {
	case status := <-done:
		require.Equal(EWaitStatus.Finished(), status)
	case <-time.After(time.Second):
		t.Fatal("WaitForAny did not wake up on freeze")
	}
}
