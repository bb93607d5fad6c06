// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Cross-document object copying: Document.Import walks a Value
// read from a Reader and rebuilds it as write-side objects owned by this
// Document, sharing one destination object per distinct source indirect
// object so cyclic or DAG-shaped structures (a page's Resources reused
// across many pages, for instance) are copied once, not once per
// reference.
package pdf

import (
	"crypto/sha256"
	"fmt"
	"io"
	"sort"
)

// mapEntry records that the object numbered srcNum in the source document
// identified by srcDocID has already been copied to dst.
type mapEntry struct {
	srcDocID [32]byte
	srcNum   uint32
	dst      *WObject
}

// objectMap is sorted by (srcDocID, srcNum) and searched with sort.Search,
// the same idiom findObject/insertObject use for the local object table.
type objectMap struct {
	entries []mapEntry
}

func newObjectMap() *objectMap {
	return &objectMap{}
}

func lessEntry(a mapEntry, docID [32]byte, num uint32) bool {
	if a.srcDocID != docID {
		return lessDocID(a.srcDocID, docID)
	}
	return a.srcNum < num
}

func lessDocID(a, b [32]byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func (m *objectMap) find(docID [32]byte, num uint32) (*WObject, bool) {
	i := sort.Search(len(m.entries), func(i int) bool {
		return !lessEntry(m.entries[i], docID, num)
	})
	if i < len(m.entries) && m.entries[i].srcDocID == docID && m.entries[i].srcNum == num {
		return m.entries[i].dst, true
	}
	return nil, false
}

func (m *objectMap) insert(docID [32]byte, num uint32, dst *WObject) {
	i := sort.Search(len(m.entries), func(i int) bool {
		return !lessEntry(m.entries[i], docID, num)
	})
	e := mapEntry{srcDocID: docID, srcNum: num, dst: dst}
	m.entries = append(m.entries, mapEntry{})
	copy(m.entries[i+1:], m.entries[i:])
	m.entries[i] = e
}

// sourceDocID derives a stable 32-byte identifier for r, used as the
// object map's partition key: the trailer's first ID-array entry when
// present (the file's own content-derived identifier), falling back to the Reader's address for ID-less malformed or
// repaired documents, which only need to be distinct within a process.
func sourceDocID(r *Reader) [32]byte {
	if ids, ok := r.trailer["ID"].(array); ok && len(ids) > 0 {
		if s, ok := ids[0].(string); ok && s != "" {
			return sha256.Sum256([]byte(s))
		}
	}
	return sha256.Sum256([]byte(fmt.Sprintf("reader:%p", r)))
}

// maxPageTreeDepth bounds Import's recursion against a maliciously or
// accidentally cyclic source structure (a Pages node listing itself as
// its own Kid, for instance); legitimate page trees never nest anywhere
// close to this deep.
const maxPageTreeDepth = 32

// Import deep-copies v, which must have been produced by some *Reader,
// into this document, returning the equivalent write-side object. Shared
// indirect objects reachable from v more than once are copied only once
// and referenced by objptr thereafter, matching the source's own sharing
// structure.
func (d *Document) Import(v Value) (object, error) {
	return d.importValue(v, 0)
}

func (d *Document) importValue(v Value, depth int) (object, error) {
	if depth > maxPageTreeDepth {
		return nil, ErrPageTreeTooDeep
	}
	if v.r != nil && v.ptr.id != 0 {
		docID := sourceDocID(v.r)
		if dst, ok := d.objectMap.find(docID, v.ptr.id); ok {
			return dst.Ref(), nil
		}
		obj := d.NewObject(nil)
		d.objectMap.insert(docID, v.ptr.id, obj)
		val, err := d.importData(v.r, v.data, depth+1)
		if err != nil {
			return nil, err
		}
		obj.Value = val
		if _, ok := v.data.(stream); ok {
			body, err := readAllStream(v)
			if err != nil {
				return nil, err
			}
			sw, err := d.OpenStream(obj, RawFilter)
			if err != nil {
				return nil, err
			}
			if _, err := sw.Write(body); err != nil {
				return nil, err
			}
			if err := sw.Close(); err != nil {
				return nil, err
			}
		}
		return obj.Ref(), nil
	}
	val, err := d.importData(v.r, v.data, depth+1)
	return val, err
}

// importData converts one non-indirect data value (the payload of a
// dict/array entry that isn't itself wrapped in an objptr) into a
// write-side object, recursing through Import for nested indirects.
func (d *Document) importData(r *Reader, data interface{}, depth int) (object, error) {
	switch x := data.(type) {
	case nil:
		return nil, nil
	case bool, int64, float64, string:
		return x, nil
	case name:
		return x, nil
	case dict:
		out := d.NewDict()
		for k, elem := range x {
			cv, err := d.importValue(r.resolve(objptr{}, elem), depth)
			if err != nil {
				return nil, err
			}
			out.Set(string(k), cv)
		}
		return out, nil
	case array:
		out := d.NewArray()
		for _, elem := range x {
			cv, err := d.importValue(r.resolve(objptr{}, elem), depth)
			if err != nil {
				return nil, err
			}
			*out = append(*out, cv)
		}
		return out, nil
	case stream:
		out := d.NewDict()
		for k, elem := range x.hdr {
			if k == "Length" || k == "Filter" || k == "DecodeParms" {
				continue
			}
			cv, err := d.importValue(r.resolve(objptr{}, elem), depth)
			if err != nil {
				return nil, err
			}
			out.Set(string(k), cv)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("pdf: cannot import value of type %T", data)
	}
}

// readAllStream drains the decoded bytes of a stream Value; the stream
// is re-encoded with RawFilter on write, so Import always copies
// plaintext payloads rather than preserving the source's original
// filter chain verbatim.
func readAllStream(v Value) ([]byte, error) {
	rc := v.Reader()
	defer rc.Close()
	return io.ReadAll(rc)
}
