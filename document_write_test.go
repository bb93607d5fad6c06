// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSimpleDocument(t *testing.T) *bytes.Buffer {
	t.Helper()
	doc := NewDocument("1.7")
	page := doc.AddPage(DefaultMediaBox)
	sw, err := doc.SetPageContents(page, FlateFilter)
	require.NoError(t, err)
	_, err = sw.Write([]byte("BT /F1 12 Tf 72 712 Td (hello) Tj ET"))
	require.NoError(t, err)
	require.NoError(t, sw.Close())

	var buf bytes.Buffer
	require.NoError(t, doc.Write(&buf))
	return &buf
}

func TestDocumentWriteRoundTrip(t *testing.T) {
	buf := buildSimpleDocument(t)

	r, err := NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	assert.Equal(t, 1, r.NumPage())
	page := r.Page(1)
	assert.Equal(t, "Page", page.V.Key("Type").Name())

	mb := page.V.Key("MediaBox")
	require.Equal(t, 4, mb.Len())
	assert.Equal(t, 612.0, mb.Index(2).Float64())
	assert.Equal(t, 792.0, mb.Index(3).Float64())

	content := page.V.Key("Contents")
	rc := content.Reader()
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestStreamLengthExcludesTrailingNewline(t *testing.T) {
	doc := NewDocument("1.7")
	page := doc.AddPage(DefaultMediaBox)
	raw := []byte("q 1 0 0 1 0 0 cm Q")
	sw, err := doc.SetPageContents(page, RawFilter)
	require.NoError(t, err)
	_, err = sw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, sw.Close())

	var buf bytes.Buffer
	require.NoError(t, doc.Write(&buf))

	r, err := NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	content := r.Page(1).V.Key("Contents")
	assert.Equal(t, int64(len(raw)), content.Key("Length").Int64(),
		"Length must count only the stream payload, not the EOL before endstream")

	rc := content.Reader()
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	if diff := cmp.Diff(raw, data); diff != "" {
		t.Errorf("decoded stream content mismatch (-want +got):\n%s", diff)
	}
}

func TestDocumentEncryptRoundTrip(t *testing.T) {
	doc := NewDocument("1.6")
	require.NoError(t, doc.Encrypt("owner-secret", "user-secret", PermPrint|PermCopy, false))

	page := doc.AddPage(DefaultMediaBox)
	info := doc.Info()
	info.Set("Title", doc.NewString("Confidential Report"))

	sw, err := doc.SetPageContents(page, RawFilter)
	require.NoError(t, err)
	_, err = sw.Write([]byte("q Q"))
	require.NoError(t, err)
	require.NoError(t, sw.Close())

	var buf bytes.Buffer
	require.NoError(t, doc.Write(&buf))

	tries := []string{"wrong", "user-secret"}
	i := 0
	r, err := NewReaderEncrypted(bytes.NewReader(buf.Bytes()), int64(buf.Len()), func() string {
		if i >= len(tries) {
			return ""
		}
		pw := tries[i]
		i++
		return pw
	})
	require.NoError(t, err)
	assert.Equal(t, 1, r.NumPage())
}

func TestXrefFormSelectionByVersion(t *testing.T) {
	assert.False(t, usesXrefStream("1.4"))
	assert.True(t, usesXrefStream("1.5"))
	assert.True(t, usesXrefStream("1.7"))
	assert.True(t, usesXrefStream("2.0"))
}

func TestPDFDictPreservesInsertionOrder(t *testing.T) {
	doc := NewDocument("1.7")
	d := doc.NewDict()
	d.Set("Z", int64(1))
	d.Set("A", int64(2))
	d.Set("M", int64(3))
	assert.Equal(t, []string{"Z", "A", "M"}, d.Keys())

	d.Set("A", int64(9))
	assert.Equal(t, []string{"Z", "A", "M"}, d.Keys(), "overwrite must not move key position")
	assert.Equal(t, int64(9), d.Get("A"))
}

func TestStreamPredictorRoundTrip(t *testing.T) {
	raw := []byte{10, 20, 30, 40, 15, 25, 35, 45, 5, 5, 5, 5}
	filter := StreamFilter{Predictor: 15, Colors: 1, BPC: 8, Columns: 4}.normalize()

	encoded, err := applyWritePredictor(raw, filter)
	require.NoError(t, err)

	params := LZWPredictorParams{Predictor: filter.Predictor, Colors: filter.Colors, BPC: filter.BPC, Columns: filter.Columns}
	dec := NewLZWPredictor(bytes.NewReader(encoded), params)
	out, err := io.ReadAll(dec)
	require.NoError(t, err)
	if diff := cmp.Diff(raw, out); diff != "" {
		t.Errorf("predictor round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestImportDeduplicatesSharedObjects(t *testing.T) {
	src := NewDocument("1.7")
	shared := src.NewDict()
	shared.Set("Font", name("Helvetica"))
	sharedObj := src.NewObject(shared)
	src.ensureCatalog()

	var buf bytes.Buffer
	require.NoError(t, src.Write(&buf))

	r, err := NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	dst := NewDocument("1.7")
	sharedValue := r.resolve(objptr{}, sharedObj.Ref())
	v1, err := dst.Import(sharedValue)
	require.NoError(t, err)
	v2, err := dst.Import(sharedValue)
	require.NoError(t, err)
	assert.Equal(t, v1, v2, "importing the same source object twice must return the same destination reference")
}

func TestBlankDocumentRoundTrip(t *testing.T) {
	doc := NewDocument("2.0")
	var buf bytes.Buffer
	require.NoError(t, doc.Write(&buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "%PDF-2.0\n"), "file must begin with the version header")
	assert.Regexp(t, `startxref\n\d+\n%%EOF\n$`, out)

	r, err := NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, 0, r.NumPage())

	pages := r.Trailer().Key("Root").Key("Pages")
	assert.Equal(t, int64(0), pages.Key("Count").Int64())
	assert.Equal(t, 0, pages.Key("Kids").Len())
}

func TestDocumentEncryptAESRoundTrip(t *testing.T) {
	doc := NewDocument("1.6")
	require.NoError(t, doc.Encrypt("owner", "user", PermPrint, true))

	page := doc.AddPage(DefaultMediaBox)
	raw := []byte("BT /F1 12 Tf 72 720 Td (hello) Tj ET\n")
	sw, err := doc.SetPageContents(page, FlateFilter)
	require.NoError(t, err)
	_, err = sw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, sw.Close())

	var buf bytes.Buffer
	require.NoError(t, doc.Write(&buf))

	r, err := NewReaderEncrypted(bytes.NewReader(buf.Bytes()), int64(buf.Len()), func() string { return "user" })
	require.NoError(t, err)

	p := uint32(r.Trailer().Key("Encrypt").Key("P").Int64())
	assert.NotZero(t, p&uint32(PermPrint), "print must remain allowed")
	assert.Zero(t, p&uint32(PermModify), "modify must remain denied")

	content := r.Page(1).V.Key("Contents")
	rc := content.Reader()
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, raw, data, "decrypted stream must match the plaintext byte for byte")
}

func TestImagePredictorStreamRoundTrip(t *testing.T) {
	const cols, rows, colors = 100, 100, 4
	raw := make([]byte, cols*rows*colors)
	for i := range raw {
		raw[i] = byte(i*31 + i/700)
	}

	doc := NewDocument("1.7")
	img := doc.NewDict()
	img.Set("Type", name("XObject"))
	img.Set("Subtype", name("Image"))
	img.Set("Width", int64(cols))
	img.Set("Height", int64(rows))
	img.Set("ColorSpace", name("DeviceCMYK"))
	img.Set("BitsPerComponent", int64(8))
	obj := doc.NewObject(img)

	sw, err := doc.OpenStream(obj, StreamFilter{Flate: true, Predictor: 15, Colors: colors, BPC: 8, Columns: cols})
	require.NoError(t, err)
	_, err = sw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, sw.Close())

	var buf bytes.Buffer
	require.NoError(t, doc.Write(&buf))

	r, err := NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	v := r.resolve(objptr{}, obj.Ref())
	require.Equal(t, Stream, v.Kind())
	rc := v.Reader()
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	if diff := cmp.Diff(raw, data); diff != "" {
		t.Errorf("image stream round trip mismatch (-want +got):\n%s", diff)
	}
}

// buildObjStmFixture writes a PDF 1.5 file whose Catalog and Pages
// objects live compressed inside a Type /ObjStm container, indexed by a
// cross-reference stream with type-2 entries.
func buildObjStmFixture() []byte {
	obj1 := "<< /Type /Catalog /Pages 2 0 R >>"
	obj2 := "<< /Type /Pages /Kids [] /Count 0 >>"
	pairs := fmt.Sprintf("1 0 2 %d\n", len(obj1)+1)
	payload := pairs + obj1 + "\n" + obj2

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.5\n%\xe2\xe3\xcf\xd3\n")

	obj3Offset := buf.Len()
	fmt.Fprintf(&buf, "3 0 obj\n<< /Type /ObjStm /N 2 /First %d /Length %d >>\nstream\n%s\nendstream\nendobj\n",
		len(pairs), len(payload), payload)

	xrefOffset := buf.Len()
	var body bytes.Buffer
	entry := func(typ byte, f2 uint32, f3 uint16) {
		body.WriteByte(typ)
		body.Write([]byte{byte(f2 >> 24), byte(f2 >> 16), byte(f2 >> 8), byte(f2)})
		body.Write([]byte{byte(f3 >> 8), byte(f3)})
	}
	entry(0, 0, 65535)
	entry(2, 3, 0) // object 1, compressed in stream 3
	entry(2, 3, 1) // object 2, compressed in stream 3
	entry(1, uint32(obj3Offset), 0)
	entry(1, uint32(xrefOffset), 0)

	var zb bytes.Buffer
	zw := zlib.NewWriter(&zb)
	zw.Write(body.Bytes())
	zw.Close()

	fmt.Fprintf(&buf, "4 0 obj\n<< /Type /XRef /Size 5 /W [1 4 2] /Root 1 0 R /Length %d /Filter /FlateDecode >>\nstream\n", zb.Len())
	buf.Write(zb.Bytes())
	buf.WriteString("\nendstream\nendobj\n")
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefOffset)
	return buf.Bytes()
}

func TestRepairTruncatedFileAndResave(t *testing.T) {
	buf := buildSimpleDocument(t)
	full := buf.Bytes()
	require.Greater(t, len(full), 64)
	cut := full[:len(full)-64]

	_, err := NewReader(bytes.NewReader(cut), int64(len(cut)))
	require.Error(t, err, "truncated file must not parse cleanly")

	r, err := RecoverPDF(bytes.NewReader(cut), int64(len(cut)), nil)
	require.NoError(t, err)
	require.Equal(t, 1, r.NumPage())

	content := r.Page(1).V.Key("Contents")
	rc := content.Reader()
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")

	// Re-save the repaired document and confirm the result parses cleanly.
	dst := NewDocument("1.7")
	imported, err := dst.Import(r.Trailer().Key("Root"))
	require.NoError(t, err)
	ref, ok := imported.(objptr)
	require.True(t, ok)
	rootObj, ok := dst.FindObject(ref.id)
	require.True(t, ok)
	dst.SetRoot(rootObj)

	var out bytes.Buffer
	require.NoError(t, dst.Write(&out))

	r2, err := NewReader(bytes.NewReader(out.Bytes()), int64(out.Len()))
	require.NoError(t, err)
	require.Equal(t, 1, r2.NumPage())

	content2 := r2.Page(1).V.Key("Contents")
	rc2 := content2.Reader()
	defer rc2.Close()
	data2, err := io.ReadAll(rc2)
	require.NoError(t, err)
	assert.Contains(t, string(data2), "hello")
}

func TestObjectStreamImportResave(t *testing.T) {
	pdf := buildObjStmFixture()
	r, err := NewReader(bytes.NewReader(pdf), int64(len(pdf)))
	require.NoError(t, err)

	catalog := r.Trailer().Key("Root")
	require.Equal(t, "Catalog", catalog.Key("Type").Name())
	require.Equal(t, "Pages", catalog.Key("Pages").Key("Type").Name())

	dst := NewDocument("1.7")
	imported, err := dst.Import(catalog)
	require.NoError(t, err)
	ref, ok := imported.(objptr)
	require.True(t, ok, "importing an indirect object must yield a reference")

	var buf bytes.Buffer
	require.NoError(t, dst.Write(&buf))

	r2, err := NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	cat2 := r2.resolve(objptr{}, ref)
	assert.Equal(t, "Catalog", cat2.Key("Type").Name())
	pages2 := cat2.Key("Pages")
	assert.Equal(t, "Pages", pages2.Key("Type").Name())
	assert.Equal(t, int64(0), pages2.Key("Count").Int64())
	assert.Equal(t, 0, pages2.Key("Kids").Len())
}

func TestOpenForUpdateChainsPrev(t *testing.T) {
	buf := buildSimpleDocument(t)
	r, err := NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	doc := NewDocument("1.7")
	require.NoError(t, doc.OpenForUpdate(r))
	assert.True(t, doc.incremental)
	assert.Equal(t, r.startXref, doc.prevXrefOffset)
	assert.Greater(t, doc.nextObjNum, uint32(0))

	var out bytes.Buffer
	out.Write(buf.Bytes()) // the sink already holds the original file; Write appends to it
	require.NoError(t, doc.Write(&out))
	assert.True(t, out.Len() > buf.Len(), "incremental update must append, not replace")

	r2, err := NewReader(bytes.NewReader(out.Bytes()), int64(out.Len()))
	require.NoError(t, err)
	assert.Equal(t, 1, r2.NumPage())
}
