package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wastore/filesig/signature"
)

func TestRecordLine_MatchesDocumentedFormat(t *testing.T) {
	require := require.New(t)
	line := recordLine(signature.Record{Offset: 0, Size: 4, Hash: []byte{0xf2, 0xb5, 0xee, 0x7a}})
	require.Equal("0x0:0x4:f2b5ee7a\r\n", line)
}

func TestOutputFile_RemovedOnError(t *testing.T) {
	require := require.New(t)
	path := filepath.Join(t.TempDir(), "out.signature")

	o := newOutputFile(path)
	require.NoError(o.writeHeader("in.bin", 11, "crc32"))
	require.NoError(o.writeRecord(signature.Record{Offset: 0, Size: 4, Hash: []byte{1, 2, 3, 4}}))

	require.NoError(o.Close(errSentinel))

	_, err := os.Stat(path)
	require.True(os.IsNotExist(err))
}

func TestOutputFile_KeptOnSuccess(t *testing.T) {
	require := require.New(t)
	path := filepath.Join(t.TempDir(), "out.signature")

	o := newOutputFile(path)
	require.NoError(o.writeHeader("in.bin", 11, "crc32"))
	require.NoError(o.writeRecord(signature.Record{Offset: 0, Size: 4, Hash: []byte{1, 2, 3, 4}}))
	require.NoError(o.Close(nil))

	contents, err := os.ReadFile(path)
	require.NoError(err)
	require.Contains(string(contents), "Filename: in.bin")
	require.Contains(string(contents), "0x0:0x4:01020304")
}

var errSentinel = &testError{"boom"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }
