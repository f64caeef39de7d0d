package pixel

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// FingerprintBytes returns a content fingerprint of raw encoded image
// bytes, suitable for use as a detection cache key. The fingerprint is a
// hex-encoded SHA-256 digest.
func FingerprintBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum)
}

// Fingerprint returns a content fingerprint of a decoded block.
//
// The digest covers the dimensions as well as the pixel data, so two
// blocks with identical bytes but different shapes fingerprint
// differently.
func Fingerprint(b *Block) string {
	h := sha256.New()
	var dims [8]byte
	if b != nil {
		binary.LittleEndian.PutUint32(dims[0:], uint32(b.Width))
		binary.LittleEndian.PutUint32(dims[4:], uint32(b.Height))
		h.Write(dims[:])
		h.Write(b.Pix)
	} else {
		h.Write(dims[:])
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
