// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"sort"
)

// WObject is a numbered object being assembled for writing:
// identity is (Number, Generation); Offset is filled in once the object
// has actually been written; Stream is non-nil if the object carries an
// attached stream.
type WObject struct {
	Number     uint32
	Generation uint16
	Value      object
	Stream     *PDFStream

	Offset       int64 // set by Document.Write once the header is emitted
	StreamOffset int64 // offset of the first byte of stream data, 0 if none
	StreamLength int64 // serialized (filtered) byte count
}

// Ref returns the indirect reference object pointing at this object.
func (o *WObject) Ref() objptr {
	return objptr{o.Number, o.Generation}
}

// findObject looks up an object by number: the object
// table is kept sorted by Number (ascending, dense from 1), so lookup by
// number is O(log N). Mirrors the sort.Search idiom already used for
// xref/offset lookups in read.go.
func findObject(objects []*WObject, num uint32) (*WObject, bool) {
	i := sort.Search(len(objects), func(i int) bool {
		return objects[i].Number >= num
	})
	if i < len(objects) && objects[i].Number == num {
		return objects[i], true
	}
	return nil, false
}

// insertObject inserts obj into objects, keeping the slice sorted by
// Number. Objects are always allocated with strictly increasing numbers
// (Document.nextObjNum only grows), so in practice this is always an
// append; the binary-search insert point keeps the invariant explicit and
// correct even if a future caller allocates out of order (e.g. imported
// objects assigned a number out of sequence relative to local ones).
func insertObject(objects []*WObject, obj *WObject) []*WObject {
	i := sort.Search(len(objects), func(i int) bool {
		return objects[i].Number >= obj.Number
	})
	if i < len(objects) && objects[i].Number == obj.Number {
		objects[i] = obj
		return objects
	}
	objects = append(objects, nil)
	copy(objects[i+1:], objects[i:])
	objects[i] = obj
	return objects
}

// NewObject allocates a new, as-yet-unwritten object holding value and
// returns it. The object is assigned the next sequential object number;
// object numbers are dense, unique, and never reused within a document.
func (d *Document) NewObject(value object) *WObject {
	obj := &WObject{Number: d.nextObjNum, Value: value}
	d.nextObjNum++
	d.objects = insertObject(d.objects, obj)
	return obj
}

// OpenStream attaches an empty stream to obj and returns a StreamWriter
// the caller writes the (uncompressed, unencrypted) payload bytes to.
// Exactly one stream may be open on the document at a time; opening a
// second while one is already open is a contract error.
func (d *Document) OpenStream(obj *WObject, filter StreamFilter) (*StreamWriter, error) {
	if d.openStreamObj != nil {
		return nil, ErrStreamAlreadyOpen
	}
	if obj.Stream != nil {
		return nil, ErrStreamAlreadyClosed
	}
	hdr := obj.Value.(*PDFDict)
	strm := &PDFStream{Dict: hdr}
	obj.Stream = strm
	d.openStreamObj = obj
	sw := newStreamWriter(d, obj, filter)
	return sw, nil
}
