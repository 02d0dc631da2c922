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

// Command filesig computes an ordered sequence of (offset, size, hash)
// records for a file's fixed-size blocks, hashed in parallel.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/wastore/filesig/signature"
)

var (
	inPath      string
	outPath     string
	readerName  string
	hashName    string
	chunkSize   int64
	workerCount int
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:     "filesig",
	Short:   "Compute an ordered file-block signature sequence",
	Version: "1.0.0",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&inPath, "in", "", "path to the file to sign (required)")
	rootCmd.PersistentFlags().StringVar(&outPath, "out", "", "output signature file (default: <in>.signature)")
	rootCmd.PersistentFlags().StringVar(&readerName, "reader", "stream", "block reader: stream|map|mapall")
	rootCmd.PersistentFlags().StringVar(&hashName, "hash", "crc32", "hash algorithm: crc32|sha256")
	rootCmd.PersistentFlags().Int64Var(&chunkSize, "chunk-size", 1024*1024, "block size in bytes")
	rootCmd.PersistentFlags().IntVar(&workerCount, "workers", 0, "worker goroutine count (0: auto-select, or set FILESIG_WORKER_COUNT)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log at debug level to stderr")

	rootCmd.MarkPersistentFlagRequired("in")
}

// Execute is the cobra entrypoint, called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}

func run() error {
	var readerKind signature.ReaderKind
	if err := readerKind.Parse(readerName); err != nil {
		return errors.Wrapf(err, "filesig: unknown --reader %q", readerName)
	}
	var hasherKind signature.HasherKind
	if err := hasherKind.Parse(hashName); err != nil {
		return errors.Wrapf(err, "filesig: unknown --hash %q", hashName)
	}

	if outPath == "" {
		outPath = inPath + ".signature"
	}

	info, err := os.Stat(inPath)
	if err != nil {
		return errors.Wrapf(err, "filesig: cannot stat %s", inPath)
	}
	fileSize := info.Size()

	minLevel := signature.ELogLevel.Warning()
	if verbose {
		minLevel = signature.ELogLevel.Debug()
	}
	logger := signature.NewStdLogger(log.New(os.Stderr, "", log.LstdFlags), minLevel)

	workers := workerCount
	if workers <= 0 {
		workers, err = signature.ComputeWorkerCount(readerKind, runtime.NumCPU())
		if err != nil {
			return err
		}
	}

	reader, err := openReader(readerKind, workers)
	if err != nil {
		return err
	}

	runID := uuid.New()
	if logger.ShouldLog(signature.ELogLevel.Info()) {
		logger.Log(signature.ELogLevel.Info(), fmt.Sprintf("run %s: %s reader, %d workers, chunk size %d", runID, readerKind, workers, chunkSize))
	}

	hasher := signature.NewHasher(hasherKind)
	pipe := signature.NewPipeline(reader, hasher, workers, logger)
	defer pipe.Close()

	out := newOutputFile(outPath)
	progress := newProgressPrinter(fileSize)

	var runErr error
	var headerErr error
	pipe.SetRecordsCallback(func(r signature.Record) {
		if !out.opened {
			if headerErr = out.writeHeader(inPath, fileSize, hashName); headerErr != nil {
				return
			}
		}
		if headerErr != nil {
			return
		}
		if err := out.writeRecord(r); err != nil {
			headerErr = err
			return
		}
		progress.onRecord(r.Offset, r.Size)
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	fmt.Printf("Filename: %s\nFilesize: %d\nHash: %s\n", inPath, fileSize, hashName)

loop:
	for {
		select {
		case <-sigCh:
			fmt.Print("\nCanceling...\n")
			runErr = pipe.Cancel(true)
			break loop
		default:
		}

		status, err := pipe.Wait(time.Second)
		if err != nil {
			runErr = err
			break loop
		}
		progress.print()
		if status == signature.EWaitStatus.Finished() || status == signature.EWaitStatus.Canceled() {
			break loop
		}
	}

	progress.finish()

	if runErr == nil {
		runErr = headerErr
	}
	if closeErr := out.Close(runErr); closeErr != nil && runErr == nil {
		runErr = closeErr
	}
	return runErr
}

func openReader(kind signature.ReaderKind, workers int) (signature.BlockReader, error) {
	switch kind {
	case signature.EReaderKind.Stream():
		return signature.NewStreamReader(inPath, workers*2, chunkSize)
	case signature.EReaderKind.Map():
		return signature.NewMmapReader(inPath, chunkSize, false)
	case signature.EReaderKind.MapAll():
		return signature.NewMmapReader(inPath, chunkSize, true)
	default:
		return nil, errors.Errorf("filesig: unknown reader kind %v", kind)
	}
}
