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
	"reflect"

	"github.com/JeffreyRichter/enum/enum"
)

// ReaderKind selects the concrete BlockReader implementation. Follows the
// "var E<Type> = <Type>(0); func (<Type>) Symbol() <Type> {...}" idiom used
// throughout the teacher (e.g. common/fe-ste-models.go's DeleteSnapshotsOption,
// common/chunkStatusLogger.go's WaitReason).
type ReaderKind uint8

var EReaderKind = ReaderKind(0)

func (ReaderKind) Stream() ReaderKind { return ReaderKind(0) }
func (ReaderKind) Map() ReaderKind    { return ReaderKind(1) }
func (ReaderKind) MapAll() ReaderKind { return ReaderKind(2) }

func (k ReaderKind) String() string {
	return enum.StringInt(k, reflect.TypeOf(k))
}

func (k *ReaderKind) Parse(s string) error {
	val, err := enum.ParseInt(reflect.TypeOf(*k), s, true, true)
	if err == nil {
		*k = val.(ReaderKind)
	}
	return err
}

// HasherKind selects the opaque hash primitive used for each block. Per
// spec, the hash functions themselves are external collaborators; this
// enum only names which one the pipeline was configured to use.
type HasherKind uint8

var EHasherKind = HasherKind(0)

func (HasherKind) Crc32() HasherKind  { return HasherKind(0) }
func (HasherKind) Sha256() HasherKind { return HasherKind(1) }

func (k HasherKind) String() string {
	return enum.StringInt(k, reflect.TypeOf(k))
}

func (k *HasherKind) Parse(s string) error {
	val, err := enum.ParseInt(reflect.TypeOf(*k), s, true, true)
	if err == nil {
		*k = val.(HasherKind)
	}
	return err
}

// WaitStatus is the result of a non-blocking-with-timeout poll of the
// aggregator or pipeline. Mirrors file_sig::SigRecords::RecordResult from
// original_source/file_sig_lib/SigRecords.hpp (timeout/ready/finished/canceled).
type WaitStatus uint8

var EWaitStatus = WaitStatus(0)

func (WaitStatus) Timeout() WaitStatus  { return WaitStatus(0) }
func (WaitStatus) Ready() WaitStatus    { return WaitStatus(1) }
func (WaitStatus) Finished() WaitStatus { return WaitStatus(2) }
func (WaitStatus) Canceled() WaitStatus { return WaitStatus(3) }

func (s WaitStatus) String() string {
	return enum.StringInt(s, reflect.TypeOf(s))
}

// LogLevel mirrors common/fe-ste-models.go's LogLevel enum, trimmed to the
// handful of severities this module actually emits.
type LogLevel uint8

var ELogLevel = LogLevel(0)

func (LogLevel) None() LogLevel    { return LogLevel(0) }
func (LogLevel) Error() LogLevel   { return LogLevel(1) }
func (LogLevel) Warning() LogLevel { return LogLevel(2) }
func (LogLevel) Info() LogLevel    { return LogLevel(3) }
func (LogLevel) Debug() LogLevel   { return LogLevel(4) }

func (l LogLevel) String() string {
	return enum.StringInt(l, reflect.TypeOf(l))
}
