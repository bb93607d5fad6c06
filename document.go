// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pdf: write-side document container. A Document owns the
// object/array/dict/string pools, the pages vector, and the
// Info/Root/Pages object references; the output sink is the io.Writer
// passed to Write. It
// is the write-side counterpart of Reader: Reader opens and inspects an
// existing file; Document assembles and serializes a new one.
package pdf

import (
	"fmt"
	"time"
)

// DefaultMediaBox is the media box ([llx, lly, urx, ury]) used for pages
// created without an explicit size: US Letter at 72 dpi.
var DefaultMediaBox = [4]float64{0, 0, 612, 792}

// Document is a PDF file under construction. It is not safe for
// concurrent use by multiple goroutines; the core is single-threaded
// and synchronous.
type Document struct {
	Version string

	MediaBox [4]float64
	CropBox  *[4]float64

	strings *stringPool
	arrays  *arrayPool
	dicts   *dictPool
	objects []*WObject // sorted by Number

	nextObjNum uint32

	infoObj    *WObject
	rootObj    *WObject
	pagesObj   *WObject
	pageObjs   []*WObject // leaf pages, in document order
	fileID     [2]string
	objectMap  *objectMap
	security   *securityWriter

	incremental    bool  // true once OpenForUpdate has seeded this document from an existing file
	baseOffset     int64 // byte length of the original file, for incremental updates
	prevXrefOffset int64 // offset of the prior xref section, chained via the trailer's /Prev

	openStreamObj *WObject // the single object with a stream currently open, or nil

	onWarning WarningHandler

	closed bool
}

// WarningHandler is the document's callback for warning-class
// conditions: the warning message is reported; returning false requests
// the operation abort where the condition allows it, true requests it
// continue. Non-recoverable errors ignore the returned value.
type WarningHandler func(doc *Document, message string) (cont bool)

// NewDocument creates an empty document with the given PDF version
// string (e.g. "1.7" or "2.0").
func NewDocument(version string) *Document {
	d := &Document{
		Version:    version,
		MediaBox:   DefaultMediaBox,
		strings:    newStringPool(),
		arrays:     &arrayPool{},
		dicts:      &dictPool{},
		nextObjNum: 1,
		objectMap:  newObjectMap(),
	}
	return d
}

func (d *Document) warnf(format string, args ...interface{}) {
	msg := "WARNING: " + fmt.Sprintf(format, args...)
	if d.onWarning != nil {
		d.onWarning(d, msg)
	} else if DebugOn {
		fmt.Println(msg)
	}
}

// OnWarning installs a callback invoked for every warning-class condition
// the document encounters while building or writing.
func (d *Document) OnWarning(fn WarningHandler) {
	d.onWarning = fn
}

// NewDict allocates an empty ordered dictionary owned by this document.
func (d *Document) NewDict() *PDFDict {
	return d.dicts.new(d)
}

// NewArray allocates an empty array owned by this document.
func (d *Document) NewArray() *array {
	return d.arrays.new()
}

// NewName returns n as a PDF name value; names are not pooled.
func (d *Document) NewName(n string) name {
	return name(n)
}

// NewString interns s in the document's string pool and returns a literal
// string value.
func (d *Document) NewString(s string) string {
	return d.strings.intern(s)
}

// NewDate returns a date value formatted per pdfDate (the canonical
// "D:YYYYMMDDHHMMSSZ" form), stored as a literal string and therefore
// written as "(D:YYYYMMDDHHMMSSZ)"; the
// value variant's "date" kind is represented, at the object-graph level,
// as a specially-prefixed string so it composes with the existing
// lex.go object model without a new sum-type arm.
func (d *Document) NewDate(t time.Time) string {
	return pdfDate(t)
}

// Pages returns the leaf page objects added so far, in document order.
func (d *Document) Pages() []*WObject {
	return d.pageObjs
}

// SetRoot makes obj the document catalog written to the trailer's Root,
// replacing the implicitly created one. Used when the catalog graph was
// imported from another document rather than assembled here.
func (d *Document) SetRoot(obj *WObject) {
	d.rootObj = obj
}

// FindObject looks up an allocated object by its object number using
// binary search over the sorted object table.
func (d *Document) FindObject(num uint32) (*WObject, bool) {
	return findObject(d.objects, num)
}

// Close finalizes the document: it returns ErrStreamAlreadyOpen if a
// stream is still open, and otherwise only marks the document closed,
// for API symmetry with Reader.Close — actual output happens in Write.
// Close does not free the pools; their memory is reclaimed by the
// garbage collector together with the Document.
func (d *Document) Close() error {
	if d.openStreamObj != nil {
		return ErrStreamAlreadyOpen
	}
	d.closed = true
	return nil
}
