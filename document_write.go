// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Document assembly and serialization. A Document is built up
// through AddPage/NewObject/OpenStream calls, then serialized in one pass
// by Write: header, then every allocated object in number order, then the
// cross-reference section and trailer (xrefwriter.go).
package pdf

import (
	"fmt"
	"io"
)

// ensureCatalog lazily allocates the document's Pages tree root and
// Catalog the first time a page or other top-level object is added,
// so Parent references are stable from the moment a page is created.
// When d was seeded by OpenForUpdate, the Catalog already exists in the
// source file; AddPage against such a document requires the caller to
// have already populated d.pagesObj itself (by importing and rewrapping
// the existing Pages dictionary), since this package does not implement
// page-tree mutation of an object it never parsed.
func (d *Document) ensureCatalog() {
	if d.pagesObj != nil || d.rootObj != nil {
		return
	}
	pagesDict := d.NewDict()
	pagesDict.Set("Type", name("Pages"))
	pagesDict.Set("Kids", d.NewArray())
	pagesDict.Set("Count", int64(0))
	d.pagesObj = d.NewObject(pagesDict)

	rootDict := d.NewDict()
	rootDict.Set("Type", name("Catalog"))
	rootDict.Set("Pages", d.pagesObj.Ref())
	d.rootObj = d.NewObject(rootDict)
}

// Info returns the document's Info dictionary, creating it on first use.
func (d *Document) Info() *PDFDict {
	if d.infoObj == nil {
		info := d.NewDict()
		d.infoObj = d.NewObject(info)
	}
	return d.infoObj.Value.(*PDFDict)
}

// AddPage allocates a new leaf page under the document's page tree with
// the given media box and returns its object. Content is attached
// afterward with OpenStream against the returned object's own stream, or
// against a separate content-stream object referenced from /Contents.
func (d *Document) AddPage(mediaBox [4]float64) *WObject {
	d.ensureCatalog()

	page := d.NewDict()
	page.Set("Type", name("Page"))
	page.Set("Parent", d.pagesObj.Ref())
	box := d.NewArray()
	*box = append(*box, mediaBox[0], mediaBox[1], mediaBox[2], mediaBox[3])
	page.Set("MediaBox", box)

	obj := d.NewObject(page)
	d.pageObjs = append(d.pageObjs, obj)

	pagesDict := d.pagesObj.Value.(*PDFDict)
	kids := pagesDict.Get("Kids").(*array)
	*kids = append(*kids, obj.Ref())
	pagesDict.Set("Count", int64(len(d.pageObjs)))
	return obj
}

// SetPageContents attaches a content stream to page by allocating a new
// stream object and wiring it as /Contents; it returns the StreamWriter
// the caller writes the content-stream operators to.
func (d *Document) SetPageContents(page *WObject, filter StreamFilter) (*StreamWriter, error) {
	hdr := d.NewDict()
	contentsObj := d.NewObject(hdr)
	pageDict := page.Value.(*PDFDict)
	pageDict.Set("Contents", contentsObj.Ref())
	return d.OpenStream(contentsObj, filter)
}

// OpenForUpdate seeds d so that subsequent NewObject/AddPage/Import calls
// continue an existing document rather than starting a new one: object
// numbering resumes above r's highest object number, the file ID and
// Root are carried over unchanged, and Write appends a new xref section
// chained to r's own via /Prev instead of emitting a fresh header.
// d must be empty (just created by
// NewDocument) when this is called.
func (d *Document) OpenForUpdate(r *Reader) error {
	if len(d.objects) > 0 || d.rootObj != nil {
		return fmt.Errorf("pdf: OpenForUpdate requires a freshly created Document")
	}
	if maxNum := uint32(len(r.xref)); maxNum > d.nextObjNum {
		d.nextObjNum = maxNum
	}
	if ids, ok := r.trailer["ID"].(array); ok && len(ids) > 0 {
		if s0, ok := ids[0].(string); ok {
			d.fileID[0] = s0
			d.fileID[1] = s0
		}
		if len(ids) > 1 {
			if s1, ok := ids[1].(string); ok {
				d.fileID[1] = s1
			}
		}
	} else {
		d.warnf("source document has no /ID; generating a fresh one")
	}
	if root, ok := r.trailer["Root"].(objptr); ok {
		d.rootObj = &WObject{Number: root.id, Generation: root.gen}
	}
	if info, ok := r.trailer["Info"].(objptr); ok {
		d.infoObj = &WObject{Number: info.id, Generation: info.gen}
	}
	d.incremental = true
	d.baseOffset = r.end
	d.prevXrefOffset = r.startXref
	return nil
}

// Write serializes the full document to w: header, body (every object in
// number order), then the cross-reference section and trailer chosen by
// Document.Version.
func (d *Document) Write(w io.Writer) error {
	if d.openStreamObj != nil {
		return ErrStreamAlreadyOpen
	}
	if d.rootObj == nil {
		d.ensureCatalog()
	}
	if d.fileID[0] == "" {
		id := randomBytes(16)
		d.fileID[0] = string(id)
		d.fileID[1] = string(id)
	} else if d.incremental {
		// ID[0] is the file's original identifier and stays fixed across
		// revisions; ID[1] changes with every save.
		d.fileID[1] = string(randomBytes(16))
	}

	pw := newPosWriter(w, d.baseOffset)
	if !d.incremental {
		if _, err := fmt.Fprintf(pw, "%%PDF-%s\n%%\xe2\xe3\xcf\xd3\n", d.Version); err != nil {
			return err
		}
	}

	for _, obj := range d.objects {
		if err := d.writeObject(pw, obj); err != nil {
			return err
		}
	}

	return d.writeXrefTail(pw, d.prevXrefOffset)
}

// writeObject emits one indirect object's "N G obj" header, its value, its
// stream body (if any), and "endobj", stamping Offset/StreamOffset as it
// goes so the xref section records exact byte positions.
func (d *Document) writeObject(pw *posWriter, obj *WObject) error {
	if obj.Value == nil && obj.Stream == nil {
		d.warnf("object %d %d has no value, writing null", obj.Number, obj.Generation)
	}
	obj.Offset = pw.Offset()
	if _, err := fmt.Fprintf(pw, "%d %d obj\n", obj.Number, obj.Generation); err != nil {
		return err
	}
	if err := writeValue(pw, obj.Value, obj.Ref(), d); err != nil {
		return err
	}
	if obj.Stream != nil {
		if _, err := pw.WriteString("\nstream\n"); err != nil {
			return err
		}
		obj.StreamOffset = pw.Offset()
		if _, err := pw.Write(obj.Stream.Raw); err != nil {
			return err
		}
		if _, err := pw.WriteString("\nendstream\n"); err != nil {
			return err
		}
	}
	_, err := pw.WriteString("\nendobj\n")
	return err
}
