package diff

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode turns uploaded bytes into comparable text. A UTF-16 byte order
// mark selects UTF-16; otherwise the input must be valid UTF-8 (an optional
// BOM is dropped). Line endings are normalized to "\n" and the result is
// NFC-composed so that equivalent accents compare equal.
func Decode(name string, data []byte) (string, error) {
	if hasUTF16BOM(data) {
		out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
		if err != nil {
			return "", &DecodingError{Name: name, Offset: -1, Err: err}
		}
		data = out
	} else {
		data = bytes.TrimPrefix(data, utf8BOM)
	}

	if off := invalidUTF8Offset(data); off >= 0 {
		return "", &DecodingError{Name: name, Offset: off}
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return norm.NFC.String(text), nil
}

func hasUTF16BOM(data []byte) bool {
	return len(data) >= 2 &&
		((data[0] == 0xFF && data[1] == 0xFE) || (data[0] == 0xFE && data[1] == 0xFF))
}

func invalidUTF8Offset(data []byte) int {
	if utf8.Valid(data) {
		return -1
	}
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}
