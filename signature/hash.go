// Copyright © 2017 Microsoft <wastore@microsoft.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package signature

import (
	"crypto/sha256"
	"encoding/binary"
	"hash/crc32"
)

// Hasher is the pure, thread-safe, deterministic (bytes) -> digest function
// consumed by the pipeline. Per spec §6 it is an external collaborator: the
// core never implements a hash algorithm, only calls one. Must not retain
// the slice it's given beyond the call.
type Hasher func(data []byte) []byte

// NewHasher returns the Hasher for the requested algorithm. CRC32 and
// SHA-256 are stdlib - the spec names these two algorithms explicitly as
// the out-of-scope hash primitives (§1, §6), so reaching for a third-party
// hash library here would contradict the spec's own naming, not extend it.
func NewHasher(kind HasherKind) Hasher {
	switch kind {
	case EHasherKind.Sha256():
		return func(data []byte) []byte {
			sum := sha256.Sum256(data)
			return sum[:]
		}
	default:
		return func(data []byte) []byte {
			sum := crc32.ChecksumIEEE(data)
			out := make([]byte, 4)
			binary.BigEndian.PutUint32(out, sum)
			return out
		}
	}
}
