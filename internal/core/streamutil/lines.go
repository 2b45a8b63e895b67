// Package streamutil provides the small stream-shaping primitives adapters
// lean on while parsing downloaded files: an auto-decompressing line
// iterator and an escape-aware token splitter
package streamutil

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"os"
)

const (
	chunkSize        = 1 << 20 // 1 MiB
	maxScanTokenSize = 32 * 1024 * 1024
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	// zlib's CMF byte: low nibble is the compression method (8 = deflate);
	// 0x78 is by far the most common CMF/FLG pairing emitted by zlib writers
	zlibMagic = byte(0x78)
)

// LineReader is a pull-based cursor over the lines of a local file,
// transparently decompressing gzip or zlib framing (or passing identity
// bytes through unchanged). It is not reentrant: one LineReader may be
// pulled by one caller at a time, and each Open call gets a fresh cursor
type LineReader struct {
	f   *os.File
	dec io.Reader
	sc  *bufio.Scanner
}

// Open returns a LineReader splitting on delim (default '\n' when delim==0)
func Open(path string, delim byte) (*LineReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	dec, err := detectDecompressor(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	if delim == 0 {
		delim = '\n'
	}
	sc := bufio.NewScanner(dec)
	buf := make([]byte, chunkSize)
	sc.Buffer(buf, maxScanTokenSize)
	sc.Split(splitOn(delim))

	return &LineReader{f: f, dec: dec, sc: sc}, nil
}

// splitOn returns a bufio.SplitFunc that behaves like bufio.ScanLines but
// for an arbitrary single-byte delimiter, flushing the final partial chunk
// at EOF per the auto-decompressing iterator's contract
func splitOn(delim byte) bufio.SplitFunc {
	return func(data []byte, atEOF bool) (advance int, token []byte, err error) {
		if atEOF && len(data) == 0 {
			return 0, nil, nil
		}
		if i := bytes.IndexByte(data, delim); i >= 0 {
			return i + 1, data[:i], nil
		}
		if atEOF {
			return len(data), data, nil
		}
		return 0, nil, nil
	}
}

// Next returns the next line (without its delimiter), or io.EOF when the
// input is exhausted
func (l *LineReader) Next() ([]byte, error) {
	if !l.sc.Scan() {
		if err := l.sc.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	line := l.sc.Bytes()
	out := make([]byte, len(line))
	copy(out, line)
	return out, nil
}

// Close releases the underlying file and any decompressor holding it open
func (l *LineReader) Close() error {
	if c, ok := l.dec.(io.Closer); ok {
		_ = c.Close()
	}
	return l.f.Close()
}

// detectDecompressor peeks the first two bytes to choose gzip, zlib, or
// identity framing
func detectDecompressor(f *os.File) (io.Reader, error) {
	br := bufio.NewReaderSize(f, chunkSize)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("streamutil: peek header: %w", err)
	}

	switch {
	case len(magic) == 2 && magic[0] == gzipMagic[0] && magic[1] == gzipMagic[1]:
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("streamutil: gzip header: %w", err)
		}
		return gz, nil
	case len(magic) == 2 && magic[0] == zlibMagic && magic[1]&0x20 == 0 &&
		(uint16(magic[0])<<8|uint16(magic[1]))%31 == 0:
		// only a valid CMF/FLG pair (FCHECK holds, no preset dictionary) is
		// treated as zlib, so plain text that merely starts with 'x' stays identity
		zr, err := zlib.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("streamutil: zlib header: %w", err)
		}
		return zr, nil
	default:
		return br, nil
	}
}
