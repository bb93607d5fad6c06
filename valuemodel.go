// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Write-side value model: an insertion-ordered dictionary and an
// in-memory stream payload, layered on top of the existing lexical
// object representation (object, array, name, objptr, dict) from lex.go.
// A parsed dict is unordered by design (readers only ever compare
// dictionaries modulo key order); PDFDict exists so
// that values assembled through the write API serialize deterministically
// in the order the caller built them.
package pdf

import (
	"time"
)

// PDFDict is an insertion-ordered, duplicate-free dictionary of PDF names
// to values, owned by a Document's dict pool. It reuses dict (lex.go)
// for storage rather than declaring a second map[name]object type: dict
// is the parsed, order-forgetting representation a Reader hands back;
// PDFDict adds the key order a Document needs to serialize deterministically.
// importData (objectmap.go) is the bridge that turns one into the other
// when copying values from a source Reader into a Document.
type PDFDict struct {
	keys   []name
	values dict
	doc    *Document
}

func newPDFDict(doc *Document) *PDFDict {
	return &PDFDict{values: make(dict), doc: doc}
}

// Set stores value under key. If key is already present, the existing
// value is overwritten in place (last write wins) and the key's position
// in iteration order is unchanged, matching ordinary map-assignment
// semantics; updating an entry (a page count, a stream Length) is a
// normal part of assembling a document, not a warning condition.
func (d *PDFDict) Set(key string, value object) {
	n := name(key)
	if _, exists := d.values[n]; exists {
		d.values[n] = value
		return
	}
	d.keys = append(d.keys, n)
	d.values[n] = value
}

// Get returns the value stored under key, or nil if absent.
func (d *PDFDict) Get(key string) object {
	return d.values[name(key)]
}

// Del removes key from the dictionary, if present.
func (d *PDFDict) Del(key string) {
	n := name(key)
	if _, ok := d.values[n]; !ok {
		return
	}
	delete(d.values, n)
	for i, k := range d.keys {
		if k == n {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the dictionary's keys in insertion order.
func (d *PDFDict) Keys() []string {
	out := make([]string, len(d.keys))
	for i, k := range d.keys {
		out[i] = string(k)
	}
	return out
}

// Len reports the number of entries in the dictionary.
func (d *PDFDict) Len() int {
	return len(d.keys)
}

// PDFStream pairs a dictionary header with an in-memory byte payload for
// the write path. It is distinct from the read-side stream type (lex.go),
// which is a lazy pointer into the bytes of a source file: a PDFStream
// holds the bytes that Document.Write writes out once, between the
// owning object's stream and endstream keywords.
type PDFStream struct {
	Dict *PDFDict
	Raw  []byte // already-filtered (compressed/encrypted) bytes, or nil until StreamWriter.Close runs
}

// pdfDate formats t as a PDF date string, "D:YYYYMMDDHHMMSSZ" in UTC,
// the canonical form chosen among the several the format allows; the
// parentheses are added when the string is written.
func pdfDate(t time.Time) string {
	return "D:" + t.UTC().Format("20060102150405") + "Z"
}

// parsePDFDate parses a PDF date string of the form "D:YYYYMMDDHHMMSS" with
// an optional timezone suffix (Z, or +/-HH'mm'). Unparseable dates return
// the zero time rather than an error; writes always produce the UTC
// form, reads accept timezone offsets and normalize.
func parsePDFDate(s string) time.Time {
	s = stripDateWrapper(s)
	if len(s) < 14 {
		return time.Time{}
	}
	layout := "20060102150405"
	t, err := time.Parse(layout, s[:14])
	if err != nil {
		return time.Time{}
	}
	rest := s[14:]
	if rest == "" || rest == "Z" {
		return t.UTC()
	}
	sign := 1
	switch rest[0] {
	case '-':
		sign = -1
	case '+':
	default:
		return t.UTC()
	}
	rest = rest[1:]
	var hh, mm int
	for i := 0; i < len(rest) && i < 2; i++ {
		if rest[i] < '0' || rest[i] > '9' {
			return t.UTC()
		}
		hh = hh*10 + int(rest[i]-'0')
	}
	if len(rest) >= 5 {
		for i := 3; i < 5; i++ {
			if rest[i] < '0' || rest[i] > '9' {
				return t.UTC()
			}
			mm = mm*10 + int(rest[i]-'0')
		}
	}
	offset := sign * (hh*3600 + mm*60)
	return t.Add(-time.Duration(offset) * time.Second).UTC()
}

func stripDateWrapper(s string) string {
	if len(s) >= 2 && s[:2] == "D:" {
		s = s[2:]
	}
	return s
}
