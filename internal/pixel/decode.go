package pixel

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"strings"
)

// DecodeBytes decodes encoded image bytes (PNG, JPEG, or GIF) into a Block.
//
// The returned block is only produced after a full decode; a truncated or
// malformed payload returns an error with no partial result.
func DecodeBytes(data []byte) (*Block, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return FromImage(img), nil
}

// DecodeDataURL decodes a base64 data URL of the form
// "data:image/<format>;base64,<payload>" into a Block.
func DecodeDataURL(url string) (*Block, error) {
	payload, err := DataURLPayload(url)
	if err != nil {
		return nil, err
	}
	return DecodeBytes(payload)
}

// DataURLPayload extracts and base64-decodes the payload of a data URL
// without decoding the image itself. Useful for fingerprinting an input
// before committing to a full decode.
func DataURLPayload(url string) ([]byte, error) {
	if !strings.HasPrefix(url, "data:") {
		return nil, fmt.Errorf("not a data URL")
	}
	comma := strings.IndexByte(url, ',')
	if comma < 0 {
		return nil, fmt.Errorf("malformed data URL: missing payload separator")
	}
	meta := url[len("data:"):comma]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("unsupported data URL encoding %q", meta)
	}
	payload, err := base64.StdEncoding.DecodeString(url[comma+1:])
	if err != nil {
		return nil, fmt.Errorf("failed to decode data URL payload: %w", err)
	}
	return payload, nil
}
