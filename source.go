package itemscan

import (
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/kestrelcv/itemscan/internal/pixel"
)

// Source supplies one input image to the detector. Implementations are
// constructed via FromImage, FromBytes, FromDataURL, or FromFile.
//
// Fingerprinting is separated from decoding so a cache hit can be served
// without paying for a decode.
type Source interface {
	fingerprint() (string, error)
	decode() (*pixel.Block, error)
}

// FromImage wraps an already-decoded image handle.
func FromImage(img image.Image) Source {
	return &imageSource{img: img}
}

type imageSource struct {
	img   image.Image
	once  sync.Once
	block *pixel.Block
}

func (s *imageSource) materialize() *pixel.Block {
	s.once.Do(func() { s.block = pixel.FromImage(s.img) })
	return s.block
}

func (s *imageSource) fingerprint() (string, error) {
	if s.img == nil {
		return "", fmt.Errorf("%w: nil image", ErrDecode)
	}
	return pixel.Fingerprint(s.materialize()), nil
}

func (s *imageSource) decode() (*pixel.Block, error) {
	if s.img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrDecode)
	}
	b := s.materialize()
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrDecode)
	}
	return b, nil
}

// FromBytes wraps raw encoded image bytes (PNG, JPEG, or GIF).
func FromBytes(data []byte) Source {
	return bytesSource(data)
}

type bytesSource []byte

func (s bytesSource) fingerprint() (string, error) {
	return pixel.FingerprintBytes(s), nil
}

func (s bytesSource) decode() (*pixel.Block, error) {
	b, err := pixel.DecodeBytes(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return b, nil
}

// FromDataURL wraps a base64 data URL
// ("data:image/<format>;base64,..."). The fingerprint is the hash of the
// URL itself, so identical URLs hit the cache without base64 or image
// decoding.
func FromDataURL(url string) Source {
	return dataURLSource(url)
}

type dataURLSource string

func (s dataURLSource) fingerprint() (string, error) {
	return pixel.FingerprintBytes([]byte(s)), nil
}

func (s dataURLSource) decode() (*pixel.Block, error) {
	b, err := pixel.DecodeDataURL(string(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return b, nil
}

// FromFile wraps an image file on disk. The file is read once, at
// whichever of fingerprinting or decoding happens first.
func FromFile(path string) Source {
	return &fileSource{path: path}
}

type fileSource struct {
	path string
	once sync.Once
	data []byte
	err  error
}

func (s *fileSource) read() ([]byte, error) {
	s.once.Do(func() { s.data, s.err = os.ReadFile(s.path) })
	return s.data, s.err
}

func (s *fileSource) fingerprint() (string, error) {
	data, err := s.read()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return pixel.FingerprintBytes(data), nil
}

func (s *fileSource) decode() (*pixel.Block, error) {
	data, err := s.read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	b, err := pixel.DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return b, nil
}
