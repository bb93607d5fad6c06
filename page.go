// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

// Page wraps a single page dictionary. It exposes no content-stream
// interpretation: callers needing glyph or layout data work against
// V directly, or through an external collaborator built on top of it.
type Page struct {
	V Value
}

// Page returns the page for the given page number. Page numbers are
// indexed starting at 1. If the page is not found, Page returns a Page
// with V.IsNull().
func (r *Reader) Page(num int) Page {
	num-- // now 0-indexed
	page := r.Trailer().Key("Root").Key("Pages")
Search:
	for page.Key("Type").Name() == "Pages" {
		count := int(page.Key("Count").Int64())
		if count < num {
			return Page{V: Value{}}
		}
		kids := page.Key("Kids")
		for i := 0; i < kids.Len(); i++ {
			kid := kids.Index(i)
			if kid.Key("Type").Name() == "Pages" {
				c := int(kid.Key("Count").Int64())
				if num < c {
					page = kid
					continue Search
				}
				num -= c
				continue
			}
			if kid.Key("Type").Name() == "Page" {
				if num == 0 {
					return Page{V: kid}
				}
				num--
			}
		}
		break
	}
	return Page{V: Value{}}
}

// NumPage returns the number of pages in the PDF file.
func (r *Reader) NumPage() int {
	return int(r.Trailer().Key("Root").Key("Pages").Key("Count").Int64())
}

// inheritable walks a page dictionary and its ancestors looking for key,
// following the PDF rule that MediaBox, CropBox, Resources and Rotate may
// be declared once on an interior Pages node and inherited by its leaves.
func (p Page) inheritable(key string) Value {
	v := p.V
	for !v.IsNull() {
		if a := v.Key(key); !a.IsNull() {
			return a
		}
		v = v.Key("Parent")
	}
	return Value{}
}

// MediaBox returns the page's media box, following inheritance from
// ancestor Pages nodes, or the zero box if none is declared.
func (p Page) MediaBox() [4]float64 {
	return rectOf(p.inheritable("MediaBox"))
}

// CropBox returns the page's crop box, falling back to MediaBox when no
// CropBox is declared anywhere in the ancestor chain.
func (p Page) CropBox() [4]float64 {
	if v := p.inheritable("CropBox"); !v.IsNull() {
		return rectOf(v)
	}
	return p.MediaBox()
}

// Resources returns the page's resource dictionary, following inheritance.
func (p Page) Resources() Value {
	return p.inheritable("Resources")
}

func rectOf(v Value) [4]float64 {
	var box [4]float64
	if v.Len() != 4 {
		return box
	}
	for i := range box {
		box[i] = v.Index(i).Float64()
	}
	return box
}
