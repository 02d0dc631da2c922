package signature

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeWorkerCount_StreamDefaultsToNumCPU(t *testing.T) {
	require := require.New(t)
	n, err := ComputeWorkerCount(EReaderKind.Stream(), 8)
	require.NoError(err)
	require.Equal(8, n)
}

func TestComputeWorkerCount_MmapDefaultsToTripleNumCPU(t *testing.T) {
	require := require.New(t)
	n, err := ComputeWorkerCount(EReaderKind.Map(), 8)
	require.NoError(err)
	require.Equal(24, n)
}

func TestComputeWorkerCount_EnvOverrideWins(t *testing.T) {
	require := require.New(t)
	os.Setenv("FILESIG_WORKER_COUNT", "7")
	defer os.Unsetenv("FILESIG_WORKER_COUNT")

	n, err := ComputeWorkerCount(EReaderKind.Stream(), 8)
	require.NoError(err)
	require.Equal(7, n)
}

func TestComputeWorkerCount_InvalidEnvOverrideErrors(t *testing.T) {
	require := require.New(t)
	os.Setenv("FILESIG_WORKER_COUNT", "not-a-number")
	defer os.Unsetenv("FILESIG_WORKER_COUNT")

	_, err := ComputeWorkerCount(EReaderKind.Stream(), 8)
	require.Error(err)
}
