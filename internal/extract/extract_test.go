package extract

import (
	"bytes"
	"testing"

	"github.com/fumiama/go-docx"
	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestUnsupportedExtensionFailsFast(t *testing.T) {
	e := New()
	for _, name := range []string{"slides.pptx", "archive.zip", "noextension", "image.png"} {
		_, err := e.Extract(name, []byte("irrelevant"))
		assert.ErrorIs(t, err, ErrUnsupportedType, name)
	}
}

func TestSupported(t *testing.T) {
	e := New()
	for _, ext := range []string{"pdf", "docx", "txt", "csv", "xls", "xlsx", "PDF", "XlSx"} {
		assert.True(t, e.Supported(ext), ext)
	}
	assert.False(t, e.Supported("md"))
}

func TestExtractTXT(t *testing.T) {
	e := New()
	text, err := e.Extract("notes.txt", []byte("  line one\nline two\n"))
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", text)
}

func TestExtractTXTRejectsInvalidUTF8(t *testing.T) {
	e := New()
	_, err := e.Extract("broken.txt", []byte{0xff, 0xfe, 0x41})

	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, "txt", extErr.Format)
}

func TestExtractCSV(t *testing.T) {
	e := New()
	text, err := e.Extract("data.csv", []byte("name,score\nalice,91\nbob,7\n"))
	require.NoError(t, err)
	assert.Contains(t, text, "name")
	assert.Contains(t, text, "alice")
	assert.Contains(t, text, "bob")
}

func TestExtractPDF(t *testing.T) {
	pdfDoc := gofpdf.New("P", "mm", "A4", "")
	pdfDoc.AddPage()
	pdfDoc.SetFont("Helvetica", "", 12)
	pdfDoc.Cell(40, 10, "Photosynthesis converts light into energy")
	pdfDoc.AddPage()
	pdfDoc.SetFont("Helvetica", "", 12)
	pdfDoc.Cell(40, 10, "Chlorophyll absorbs red and blue light")

	var buf bytes.Buffer
	require.NoError(t, pdfDoc.Output(&buf))

	e := New()
	text, err := e.Extract("bio.pdf", buf.Bytes())
	require.NoError(t, err)
	assert.Contains(t, text, "Photosynthesis")
	assert.Contains(t, text, "Chlorophyll")
}

func TestExtractDOCX(t *testing.T) {
	w := docx.New().WithDefaultTheme()
	w.AddParagraph().AddText("The mitochondria is the powerhouse of the cell")
	w.AddParagraph().AddText("ATP is produced during cellular respiration")

	var buf bytes.Buffer
	_, err := w.WriteTo(&buf)
	require.NoError(t, err)

	e := New()
	text, err := e.Extract("bio.docx", buf.Bytes())
	require.NoError(t, err)
	assert.Contains(t, text, "mitochondria")
	assert.Contains(t, text, "ATP")
}

func TestExtractXLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "element"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "symbol"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Hydrogen"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "H"))
	_, err := f.NewSheet("Isotopes")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Isotopes", "A1", "Deuterium"))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	e := New()
	text, err := e.Extract("elements.xlsx", buf.Bytes())
	require.NoError(t, err)
	assert.Contains(t, text, "--- Sheet: Sheet1 ---")
	assert.Contains(t, text, "--- Sheet: Isotopes ---")
	assert.Contains(t, text, "Hydrogen")
	assert.Contains(t, text, "Deuterium")
}

func TestExtractCorruptFileReportsError(t *testing.T) {
	e := New()
	for _, name := range []string{"bad.pdf", "bad.docx", "bad.xlsx", "bad.xls"} {
		_, err := e.Extract(name, []byte("this is not a real document"))
		var extErr *ExtractionError
		assert.ErrorAs(t, err, &extErr, name)
	}
}

func TestExtractionResultIsCached(t *testing.T) {
	e := New()
	data := []byte("cached content")

	first, err := e.Extract("a.txt", data)
	require.NoError(t, err)

	// same name + content hits the cache
	key := cacheKey("a.txt", data)
	_, found := e.results.Get(key)
	assert.True(t, found)

	second, err := e.Extract("a.txt", data)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// different content under the same name is a different identity
	otherKey := cacheKey("a.txt", []byte("different"))
	assert.NotEqual(t, key, otherKey)
}
