// Package cache keeps section comparisons so the paragraph and analysis
// passes over the same document pair reuse the section pass.
package cache

import (
	"encoding/binary"
	"encoding/hex"
	"io"

	"github.com/zeebo/blake3"
)

// Key identifies a comparison by the content of both documents and the
// segmenter that split them.
type Key string

// NewKey hashes each part with a length prefix so that ("ab", "c") and
// ("a", "bc") produce different keys.
func NewKey(oldText, newText, segmenter string) Key {
	h := blake3.New()
	var n [8]byte
	for _, part := range []string{segmenter, oldText, newText} {
		binary.BigEndian.PutUint64(n[:], uint64(len(part)))
		h.Write(n[:])
		io.WriteString(h, part)
	}
	return Key(hex.EncodeToString(h.Sum(nil)))
}

// Short returns a prefix suitable for log lines.
func (k Key) Short() string {
	if len(k) > 12 {
		return string(k[:12])
	}
	return string(k)
}
