// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Per-document pools for strings, arrays, and dictionaries.
// Ownership is immediate on creation; nothing is freed piece by piece,
// and everything is reclaimed together by the garbage collector once the
// owning Document is no longer referenced (Document.Close does not free
// the pools).
package pdf

import (
	"sort"
	"sync"
)

// bufferPool recycles the tokenizer's buffer structs across parses so
// repeated Open/Close cycles (common when a caller walks many files or
// repairs a damaged xref) don't re-allocate the backing byte slices
// every time. newBuffer draws from it directly.
var bufferPool = sync.Pool{
	New: func() interface{} {
		return &buffer{
			buf:         make([]byte, 0, 65536),
			tmp:         make([]byte, 0, 256),
			unread:      make([]token, 0, 16),
			key:         make([]byte, 0, 64),
			allowObjptr: true,
			allowStream: true,
		}
	},
}

// GetPDFBuffer draws a buffer from the pool.
func GetPDFBuffer() *buffer {
	return bufferPool.Get().(*buffer)
}

// PutPDFBuffer resets b and returns it to the pool.
func PutPDFBuffer(b *buffer) {
	b.r = nil
	b.buf = b.buf[:0]
	b.pos = 0
	b.offset = 0
	b.tmp = b.tmp[:0]
	b.unread = b.unread[:0]
	b.allowEOF = false
	b.allowObjptr = true
	b.allowStream = true
	b.eof = false
	b.readErr = nil
	b.key = b.key[:0]
	b.useAES = false
	b.objptr = objptr{}
	b.ctxChecker = nil
	b.limits = nil
	bufferPool.Put(b)
}

// stringPool deduplicates byte strings per document. intern returns the
// pool's canonical copy of s, reusing an existing entry when one already
// has the same bytes. Lookup is sorted-insert + binary search, mirroring the
// sort.Search idiom the reader already uses for offset/xref lookups.
type stringPool struct {
	entries []string // sorted by value
	order   []string // insertion order, for GC-free inspection if ever needed
}

func newStringPool() *stringPool {
	return &stringPool{}
}

// intern returns the pool's canonical copy of s.
func (p *stringPool) intern(s string) string {
	i := sort.SearchStrings(p.entries, s)
	if i < len(p.entries) && p.entries[i] == s {
		return p.entries[i]
	}
	p.entries = append(p.entries, "")
	copy(p.entries[i+1:], p.entries[i:])
	p.entries[i] = s
	p.order = append(p.order, s)
	return s
}

// arrayPool and dictPool own all arrays/dicts created for a document.
// Closing the document does not release them, and individual
// entries are never freed early: Go's GC reclaims them once the
// Document itself is collected, but keeping an explicit pool here
// keeps the ownership model explicit (and gives a single
// place to hang future explicit-release support).
type arrayPool struct {
	all []*array
}

func (p *arrayPool) new() *array {
	a := new(array)
	p.all = append(p.all, a)
	return a
}

type dictPool struct {
	all []*PDFDict
}

func (p *dictPool) new(doc *Document) *PDFDict {
	d := newPDFDict(doc)
	p.all = append(p.all, d)
	return d
}
