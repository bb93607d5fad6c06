// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// ASCIIHexDecode filter: pairs of hex digits become bytes, whitespace is
// ignored, '>' ends the data, and a trailing odd digit is padded with 0.

package pdf

import (
	"bufio"
	"fmt"
	"io"
)

type asciiHexDecoder struct {
	r   *bufio.Reader
	eod bool
}

func newASCIIHexDecoder(rd io.Reader) io.Reader {
	return &asciiHexDecoder{r: bufio.NewReader(rd)}
}

func (d *asciiHexDecoder) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if d.eod {
			if n == 0 {
				return 0, io.EOF
			}
			return n, nil
		}
		hi, err := d.nextDigit()
		if err != nil {
			if err == io.EOF && n > 0 {
				return n, nil
			}
			return n, err
		}
		if hi < 0 {
			// '>' with no pending digit: clean end of data.
			continue
		}
		lo, err := d.nextDigit()
		if err != nil && err != io.EOF {
			return n, err
		}
		if lo < 0 || err == io.EOF {
			// Odd digit count: pad the final nibble with 0.
			lo = 0
			d.eod = true
		}
		p[n] = byte(hi<<4 | lo)
		n++
	}
	return n, nil
}

// nextDigit returns the value of the next hex digit, skipping whitespace.
// It returns -1 when the '>' end-of-data marker is reached.
func (d *asciiHexDecoder) nextDigit() (int, error) {
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			return -1, err
		}
		switch {
		case isSpace(b):
			continue
		case b == '>':
			d.eod = true
			return -1, nil
		}
		v := unhex(b)
		if v < 0 {
			return -1, fmt.Errorf("malformed hex data in ASCIIHexDecode stream: %q", b)
		}
		return v, nil
	}
}
