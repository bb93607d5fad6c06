// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Write-side stream codec. Mirrors filter_decode.go's /
// read.go's decode pipeline in reverse: plaintext -> predictor -> Flate ->
// encryption -> file bytes.
package pdf

import (
	"bytes"
	"compress/zlib"
	"io"

	"github.com/pkg/errors"
)

// StreamFilter configures how StreamWriter encodes a stream's payload.
type StreamFilter struct {
	Flate     bool // apply FlateDecode-compatible zlib compression
	Predictor int  // 1 (none), 2 (TIFF), 10-15 (PNG family); 0 means 1
	Colors    int  // default 1
	BPC       int  // bits per component, default 8
	Columns   int  // default 1
}

// RawFilter writes the stream body unfiltered.
var RawFilter = StreamFilter{Predictor: 1}

// FlateFilter applies only FlateDecode, no predictor.
var FlateFilter = StreamFilter{Flate: true, Predictor: 1}

func (f StreamFilter) normalize() StreamFilter {
	if f.Predictor == 0 {
		f.Predictor = 1
	}
	if f.Colors == 0 {
		f.Colors = 1
	}
	if f.BPC == 0 {
		f.BPC = 8
	}
	if f.Columns == 0 {
		f.Columns = 1
	}
	return f
}

// dictParms builds the DecodeParms dictionary for a non-trivial predictor.
func (f StreamFilter) dictParms(doc *Document) object {
	if f.Predictor <= 1 {
		return nil
	}
	d := doc.NewDict()
	d.Set("Predictor", int64(f.Predictor))
	d.Set("Colors", int64(f.Colors))
	d.Set("BitsPerComponent", int64(f.BPC))
	d.Set("Columns", int64(f.Columns))
	return d
}

// StreamWriter is the io.WriteCloser returned by Document.OpenStream. It
// buffers the plaintext payload, then on Close applies the predictor (if
// any), Flate (if requested), and per-object encryption (if the document
// is locked), in that order, and appends the result to the owning
// object's Length and Stream.Raw fields.
type StreamWriter struct {
	doc    *Document
	obj    *WObject
	filter StreamFilter
	buf    bytes.Buffer
	closed bool
}

func newStreamWriter(doc *Document, obj *WObject, filter StreamFilter) *StreamWriter {
	return &StreamWriter{doc: doc, obj: obj, filter: filter.normalize()}
}

func (s *StreamWriter) Write(p []byte) (int, error) {
	if s.closed {
		return 0, ErrStreamAlreadyClosed
	}
	return s.buf.Write(p)
}

// Close runs the encode pipeline and releases the document's single open
// stream slot.
func (s *StreamWriter) Close() error {
	if s.closed {
		return ErrStreamAlreadyClosed
	}
	s.closed = true
	defer func() { s.doc.openStreamObj = nil }()

	raw := s.buf.Bytes()
	predicted, err := applyWritePredictor(raw, s.filter)
	if err != nil {
		return errors.Wrapf(err, "stream %d %d: predictor encode", s.obj.Number, s.obj.Generation)
	}

	var compressed []byte
	hdr := s.obj.Value.(*PDFDict)
	var filterNames []object
	if s.filter.Flate {
		var zb bytes.Buffer
		zw := zlib.NewWriter(&zb)
		if _, err := zw.Write(predicted); err != nil {
			return errors.Wrapf(err, "stream %d %d: flate write", s.obj.Number, s.obj.Generation)
		}
		if err := zw.Close(); err != nil {
			return errors.Wrapf(err, "stream %d %d: flate close", s.obj.Number, s.obj.Generation)
		}
		compressed = zb.Bytes()
		filterNames = append(filterNames, name("FlateDecode"))
	} else {
		compressed = predicted
	}

	final := compressed
	if s.doc.security != nil {
		final = s.doc.security.encryptStream(s.obj.Ref(), compressed)
	}

	if len(filterNames) == 1 {
		hdr.Set("Filter", filterNames[0])
	} else if len(filterNames) > 1 {
		arr := s.doc.NewArray()
		*arr = append(*arr, filterNames...)
		hdr.Set("Filter", arr)
	}
	if parms := s.filter.dictParms(s.doc); parms != nil {
		hdr.Set("DecodeParms", parms)
	}
	hdr.Set("Length", int64(len(final)))

	s.obj.Stream.Raw = final
	s.obj.StreamLength = int64(len(final))
	return nil
}

// applyWritePredictor is the write-side mirror of the read path's
// NewLZWPredictor row engine: None is a passthrough, TIFF predictor 2
// does per-row horizontal differencing, and the PNG family always
// chooses Paeth uniformly.
func applyWritePredictor(data []byte, f StreamFilter) ([]byte, error) {
	if f.Predictor <= 1 {
		return data, nil
	}
	bytesPerPixel := (f.Colors*f.BPC + 7) / 8
	rowBytes := (f.Columns*f.Colors*f.BPC + 7) / 8
	if rowBytes <= 0 {
		return data, nil
	}

	var out bytes.Buffer
	prev := make([]byte, rowBytes)
	for off := 0; off < len(data); off += rowBytes {
		end := off + rowBytes
		if end > len(data) {
			end = len(data)
		}
		row := make([]byte, rowBytes)
		copy(row, data[off:end])

		switch f.Predictor {
		case 2:
			encodeTIFFRow(row, bytesPerPixel)
			out.Write(row)
		default: // 10-15: PNG family, always encode with Paeth (predictor type 4)
			encoded := make([]byte, rowBytes)
			for i := range encoded {
				var a, b, c byte
				if i >= bytesPerPixel {
					a = row[i-bytesPerPixel]
					c = prev[i-bytesPerPixel]
				}
				b = prev[i]
				encoded[i] = row[i] - paethPredict(a, b, c)
			}
			out.WriteByte(4)
			out.Write(encoded)
			prev = row
		}
	}
	return out.Bytes(), nil
}

// encodeTIFFRow applies TIFF predictor 2 in place: each sample becomes the
// difference from the previous sample bytesPerPixel bytes earlier in the
// same row (the inverse of filter_decode.go's readTIFFPredictor).
func encodeTIFFRow(row []byte, bytesPerPixel int) {
	for i := len(row) - 1; i >= bytesPerPixel; i-- {
		row[i] -= row[i-bytesPerPixel]
	}
}

// paethPredict duplicates the read path's paeth tie-breaking rule
// (toward a, then b) so encode/decode agree exactly.
func paethPredict(a, b, c byte) byte {
	pa := absInt(int(b) - int(c))
	pb := absInt(int(a) - int(c))
	pc := absInt(int(a) + int(b) - 2*int(c))
	if pa <= pb && pa <= pc {
		return a
	} else if pb <= pc {
		return b
	}
	return c
}

var _ io.WriteCloser = (*StreamWriter)(nil)
