// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import "io"

// posWriter wraps an io.Writer and tracks the absolute byte offset written
// so far, so that object offsets recorded for the cross-reference table
// are exact: the offset recorded in the xref for an object must equal
// the offset of the first byte of its "N G obj" header. Because Document builds the whole object graph in memory
// before serializing it (see document.go), every Length is known before
// any bytes are written, so unlike a true incremental/streaming writer
// this never needs to back-patch or seek on the sink: output-callback
// mode and file-backed mode are written identically.
type posWriter struct {
	w      io.Writer
	offset int64
}

// newPosWriter wraps w, with offset seeded to base: an incremental update
// (Document.OpenForUpdate) appends bytes after an existing file of known
// size, so offsets recorded for the new objects must continue from where
// that file left off rather than from zero.
func newPosWriter(w io.Writer, base int64) *posWriter {
	return &posWriter{w: w, offset: base}
}

func (p *posWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.offset += int64(n)
	return n, err
}

func (p *posWriter) WriteString(s string) (int, error) {
	return p.Write([]byte(s))
}

func (p *posWriter) Offset() int64 {
	return p.offset
}
