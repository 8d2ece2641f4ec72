package model

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"strconv"
)

// Fingerprint returns a stable content hash of (start, app, title, url).
// Downstream persistence uses it as an idempotent upsert key, so the same
// timeline entry produced by two runs hashes identically.
func (e OutputEvent) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(strconv.FormatInt(e.Start, 10)))
	writeField(h, e.App)
	writeField(h, e.Title)
	writeField(h, e.URL)
	return hex.EncodeToString(h.Sum(nil))
}

// writeField writes a length-prefixed field so that nil, "" and adjacent
// field contents cannot collide.
func writeField(h hash.Hash, s *string) {
	if s == nil {
		h.Write([]byte{0xff})
		return
	}
	h.Write([]byte{0x00})
	h.Write([]byte(strconv.Itoa(len(*s))))
	h.Write([]byte{'|'})
	h.Write([]byte(*s))
}
