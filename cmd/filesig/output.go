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

package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/wastore/filesig/signature"
)

// recordLine formats one record exactly as original_source/file_signature/main.cpp's
// operator<<(ostream&, const Record&): "0x<offset-hex>:0x<size-hex>:<digest-hex>\r\n".
func recordLine(r signature.Record) string {
	return fmt.Sprintf("0x%x:0x%x:%s\r\n", r.Offset, r.Size, hex.EncodeToString(r.Hash))
}

// outputFile owns the lazily-opened signature output. It is created at the
// first record (spec §7's "no partial signature file is produced" policy,
// generalized from main.cpp's open-then-header-then-append flow) and is
// deleted rather than left half-written if the run ends in error.
type outputFile struct {
	path    string
	f       *os.File
	w       *bufio.Writer
	opened  bool
	failed  bool
}

func newOutputFile(path string) *outputFile {
	return &outputFile{path: path}
}

// writeHeader opens the file on first use and writes the Filename:/Filesize:/Hash:
// header block main.cpp writes before any record line.
func (o *outputFile) writeHeader(inPath string, fileSize int64, hashName string) error {
	f, err := os.OpenFile(o.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrapf(err, "filesig: cannot create %s", o.path)
	}
	o.f = f
	o.w = bufio.NewWriter(f)
	o.opened = true

	if _, err := fmt.Fprintf(o.w, "Filename: %s\r\nFilesize: %d\r\nHash: %s\r\n", inPath, fileSize, hashName); err != nil {
		o.failed = true
		return errors.Wrap(err, "filesig: writing output header")
	}
	return nil
}

// writeRecord appends one record line.
func (o *outputFile) writeRecord(r signature.Record) error {
	if _, err := o.w.WriteString(recordLine(r)); err != nil {
		o.failed = true
		return errors.Wrap(err, "filesig: writing record")
	}
	return nil
}

// Close flushes and closes on success, or removes the half-written file on
// failure - the no-partial-output policy from spec §7.
func (o *outputFile) Close(runErr error) error {
	if !o.opened {
		return nil
	}
	flushErr := o.w.Flush()
	closeErr := o.f.Close()

	if runErr != nil || o.failed || flushErr != nil || closeErr != nil {
		os.Remove(o.path)
		if flushErr != nil {
			return flushErr
		}
		return closeErr
	}
	return nil
}
