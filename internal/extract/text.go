package extract

import (
	"errors"
	"unicode/utf8"
)

// readTXT decodes raw bytes as UTF-8. A decoding failure is a reported
// error, never a partial result.
func readTXT(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errors.New("file is not valid UTF-8")
	}
	return string(data), nil
}
