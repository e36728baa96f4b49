package ingest

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Encoding names a text encoding accepted for input files.
type Encoding string

const (
	UTF8     Encoding = "utf-8"
	Latin1   Encoding = "latin-1"
	ISO88591 Encoding = "iso-8859-1"
	CP1252   Encoding = "cp1252"
)

// DefaultFallbacks are tried in order after the current encoding fails.
var DefaultFallbacks = []Encoding{Latin1, ISO88591, CP1252}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode converts data in encoding e to UTF-8.
func (e Encoding) Decode(data []byte) ([]byte, error) {
	switch e {
	case UTF8:
		data = bytes.TrimPrefix(data, utf8BOM)
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("invalid %s byte sequence", e)
		}
		return data, nil
	case Latin1, ISO88591:
		return charmap.ISO8859_1.NewDecoder().Bytes(data)
	case CP1252:
		return charmap.Windows1252.NewDecoder().Bytes(data)
	default:
		return nil, fmt.Errorf("unsupported encoding %q", e)
	}
}

// DecodeSticky decodes data trying current first and then each fallback in
// order. The encoding that succeeded is returned so the caller can thread it
// into the next file: once a file needed a fallback, later files try that
// fallback first.
func DecodeSticky(data []byte, current Encoding, fallbacks []Encoding) ([]byte, Encoding, error) {
	if current == "" {
		current = UTF8
	}
	text, err := current.Decode(data)
	if err == nil {
		return text, current, nil
	}

	for _, enc := range fallbacks {
		if enc == current {
			continue
		}
		if text, ferr := enc.Decode(data); ferr == nil {
			return text, enc, nil
		}
	}
	return nil, current, fmt.Errorf("%w: tried %s and %d fallbacks: %v", ErrUnreadableFile, current, len(fallbacks), err)
}
