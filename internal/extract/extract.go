// Package extract turns uploaded documents (PDF, DOCX, TXT, CSV, XLS/XLSX)
// into plain UTF-8 text for prompt building.
package extract

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// ErrUnsupportedType is returned for file extensions outside the whitelist.
// No reader is invoked in that case.
var ErrUnsupportedType = errors.New("unsupported file type")

// ExtractionError reports a parse failure in one of the format readers.
type ExtractionError struct {
	Format string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("error reading %s: %v", strings.ToUpper(e.Format), e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// reader extracts text from one document format.
type reader func(data []byte) (string, error)

// Extractor dispatches uploads to the per-format readers and memoizes
// results by content identity so re-uploading the same file within a
// session skips the parse.
type Extractor struct {
	readers map[string]reader
	results *cache.Cache
}

// New creates an Extractor with all supported formats registered.
func New() *Extractor {
	e := &Extractor{
		results: cache.New(1*time.Hour, 10*time.Minute),
	}
	e.readers = map[string]reader{
		"pdf":  readPDF,
		"docx": readDOCX,
		"txt":  readTXT,
		"csv":  readCSV,
		"xls":  readXLS,
		"xlsx": readXLSX,
	}
	return e
}

// Supported reports whether ext (without the dot, any case) has a reader.
func (e *Extractor) Supported(ext string) bool {
	_, ok := e.readers[strings.ToLower(ext)]
	return ok
}

// Extract returns the text content of the named file. The extension is taken
// from the file name; unsupported extensions fail with ErrUnsupportedType
// before any parsing happens.
func (e *Extractor) Extract(fileName string, data []byte) (string, error) {
	ext := extension(fileName)
	read, ok := e.readers[ext]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}

	key := cacheKey(fileName, data)
	if cached, found := e.results.Get(key); found {
		return cached.(string), nil
	}

	text, err := read(data)
	if err != nil {
		return "", &ExtractionError{Format: ext, Err: err}
	}
	text = strings.TrimSpace(text)

	e.results.Set(key, text, cache.DefaultExpiration)
	return text, nil
}

func extension(fileName string) string {
	idx := strings.LastIndex(fileName, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(fileName[idx+1:])
}

func cacheKey(fileName string, data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%d:%x", fileName, len(data), sum)
}
