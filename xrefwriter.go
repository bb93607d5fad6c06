// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Cross-reference and trailer serialization. Two forms are
// supported, matching the read side's own dual xref decoder
// (readXrefTable/readXrefStream in read.go): a classical plain-text xref
// table for documents at or below PDF 1.4, and a compressed cross-reference
// stream for 1.5+, selected by Document.Version. Both forms
// write only the objects allocated in this Document: a fresh document
// also owns the reserved object 0 and writes its free-list head; an
// incremental update (Document.OpenForUpdate) writes only the new/changed
// objects and chains to the prior xref section via /Prev, leaving
// unmodified objects to be found there.
package pdf

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// writeXrefTail serializes the cross-reference section and trailer for
// the objects written so far, choosing the classical or stream form by
// version.
func (d *Document) writeXrefTail(w *posWriter, prevOffset int64) error {
	if usesXrefStream(d.Version) {
		return d.writeXrefStream(w, prevOffset)
	}
	return d.writeXrefTable(w, prevOffset)
}

// usesXrefStream reports whether version prefers the compressed
// cross-reference stream form (PDF 1.5 and later).
func usesXrefStream(version string) bool {
	switch version {
	case "1.0", "1.1", "1.2", "1.3", "1.4":
		return false
	default:
		return true
	}
}

// writeXrefTable emits a classical plain-text xref table,
// followed by a trailer dictionary and the startxref tail.
func (d *Document) writeXrefTable(w *posWriter, prevOffset int64) error {
	xrefOffset := w.Offset()

	objs := append([]*WObject(nil), d.objects...)
	sort.Slice(objs, func(i, j int) bool { return objs[i].Number < objs[j].Number })

	if _, err := w.WriteString("xref\n"); err != nil {
		return err
	}
	if !d.incremental {
		if _, err := w.WriteString("0 1\n0000000000 65535 f \n"); err != nil {
			return err
		}
	}
	for _, run := range contiguousRuns(objs) {
		if _, err := fmt.Fprintf(w, "%d %d\n", run.start, len(run.objs)); err != nil {
			return err
		}
		for _, o := range run.objs {
			if _, err := fmt.Fprintf(w, "%010d %05d n \n", o.Offset, o.Generation); err != nil {
				return err
			}
		}
	}

	trailer := d.buildTrailer(int64(d.nextObjNum), prevOffset)
	if _, err := w.WriteString("trailer\n"); err != nil {
		return err
	}
	if err := writeDict(w, trailer, objptr{}, d); err != nil {
		return errors.Wrap(err, "writeXrefTable: failed to write trailer dictionary")
	}
	if _, err := fmt.Fprintf(w, "\nstartxref\n%d\n%%%%EOF\n", xrefOffset); err != nil {
		return err
	}
	return nil
}

// xrefRun is a maximal run of objects with consecutive Numbers, the unit
// classical xref subsections (and xref-stream Index pairs) are grouped by.
type xrefRun struct {
	start uint32
	objs  []*WObject
}

func contiguousRuns(objs []*WObject) []xrefRun {
	var runs []xrefRun
	i := 0
	for i < len(objs) {
		j := i + 1
		for j < len(objs) && objs[j].Number == objs[j-1].Number+1 {
			j++
		}
		runs = append(runs, xrefRun{start: objs[i].Number, objs: objs[i:j]})
		i = j
	}
	return runs
}

// writeXrefStream emits a single cross-reference stream object:
// a Type/XRef object whose stream body packs, per entry, (type, field2,
// field3) as fixed-width big-endian integers, with widths declared in W. The
// stream is itself one of the objects it indexes, at the offset it is
// about to be written at.
func (d *Document) writeXrefStream(w *posWriter, prevOffset int64) error {
	xrefNum := d.nextObjNum
	d.nextObjNum++
	xrefOffset := w.Offset()

	objs := append([]*WObject(nil), d.objects...)
	sort.Slice(objs, func(i, j int) bool { return objs[i].Number < objs[j].Number })

	var body bytes.Buffer
	index := d.NewArray()
	appendRun := func(start uint32, count int) {
		*index = append(*index, int64(start), int64(count))
	}

	if !d.incremental {
		body.WriteByte(0)
		putUint32(&body, 0)
		putUint16(&body, 65535)
		appendRun(0, 1)
	}
	for _, run := range contiguousRuns(objs) {
		for _, o := range run.objs {
			body.WriteByte(1)
			putUint32(&body, uint32(o.Offset))
			putUint16(&body, o.Generation)
		}
		appendRun(run.start, len(run.objs))
	}
	body.WriteByte(1)
	putUint32(&body, uint32(xrefOffset))
	putUint16(&body, 0)
	appendRun(xrefNum, 1)

	var zb bytes.Buffer
	zw := zlib.NewWriter(&zb)
	if _, err := zw.Write(body.Bytes()); err != nil {
		return errors.Wrap(err, "writeXrefStream: failed to compress xref stream body")
	}
	if err := zw.Close(); err != nil {
		return errors.Wrap(err, "writeXrefStream: failed to compress xref stream body")
	}

	trailer := d.buildTrailer(int64(xrefNum+1), prevOffset)
	trailer.Set("Type", name("XRef"))
	trailer.Set("W", xrefWArray(d))
	trailer.Set("Index", index)
	trailer.Set("Length", int64(zb.Len()))
	trailer.Set("Filter", name("FlateDecode"))

	if _, err := fmt.Fprintf(w, "%d 0 obj\n", xrefNum); err != nil {
		return err
	}
	// The zero ref keeps the dictionary out of string encryption: the
	// O/U/ID entries must stay readable before any key can be derived.
	if err := writeDict(w, trailer, objptr{}, d); err != nil {
		return errors.Wrap(err, "writeXrefStream: failed to write xref stream dictionary")
	}
	if _, err := w.WriteString("\nstream\n"); err != nil {
		return err
	}
	if _, err := w.Write(zb.Bytes()); err != nil {
		return err
	}
	if _, err := w.WriteString("\nendstream\nendobj\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "startxref\n%d\n%%%%EOF\n", xrefOffset); err != nil {
		return err
	}
	return nil
}

func xrefWArray(d *Document) *array {
	a := d.NewArray()
	*a = append(*a, int64(1), int64(4), int64(2))
	return a
}

func putUint32(b *bytes.Buffer, v uint32) {
	b.WriteByte(byte(v >> 24))
	b.WriteByte(byte(v >> 16))
	b.WriteByte(byte(v >> 8))
	b.WriteByte(byte(v))
}

func putUint16(b *bytes.Buffer, v uint16) {
	b.WriteByte(byte(v >> 8))
	b.WriteByte(byte(v))
}

// buildTrailer assembles the Size/Root/Info/ID/Prev/Encrypt trailer
// entries common to both xref forms.
func (d *Document) buildTrailer(size int64, prevOffset int64) *PDFDict {
	t := d.NewDict()
	t.Set("Size", size)
	if d.rootObj != nil {
		t.Set("Root", d.rootObj.Ref())
	}
	if d.infoObj != nil {
		t.Set("Info", d.infoObj.Ref())
	}
	if d.fileID[0] != "" {
		ids := d.NewArray()
		*ids = append(*ids, d.fileID[0], d.fileID[1])
		t.Set("ID", ids)
	}
	if prevOffset > 0 {
		t.Set("Prev", prevOffset)
	}
	if d.security != nil {
		t.Set("Encrypt", d.security.encryptDict(d))
	}
	return t
}
