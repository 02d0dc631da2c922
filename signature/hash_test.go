package signature

import (
	"crypto/sha256"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewHasher_Crc32MatchesReferenceImplementation(t *testing.T) {
	a := assert.New(t)
	h := NewHasher(EHasherKind.Crc32())

	data := []byte("hello world")
	want := make([]byte, 4)
	binary.BigEndian.PutUint32(want, crc32.ChecksumIEEE(data))

	a.Equal(want, h(data))
}

func TestNewHasher_Sha256MatchesReferenceImplementation(t *testing.T) {
	a := assert.New(t)
	h := NewHasher(EHasherKind.Sha256())

	data := []byte("hello world")
	want := sha256.Sum256(data)

	a.Equal(want[:], h(data))
}

func TestNewHasher_DifferentInputsDifferentDigests(t *testing.T) {
	a := assert.New(t)
	h := NewHasher(EHasherKind.Crc32())
	a.NotEqual(h([]byte("abc")), h([]byte("abd")))
}
