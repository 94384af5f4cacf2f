// Package images packs raw camera frames into ThermalReading payloads.
package images

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/bellflight/avr/core/payloads"
)

// ErrShape is returned when an image's shape does not match its pixel data.
var ErrShape = errors.New("image shape does not match data")

// Image is a row-major array of 8 bit samples. Shape lists the size of each
// dimension, e.g. {8, 8} for a single channel 8x8 sensor.
type Image struct {
	Shape []int
	Pix   []byte
}

// MaxSamples bounds the size of an image accepted by Deserialize.
const MaxSamples = 64 << 20

// Len returns the number of samples implied by the shape, or -1 when a
// dimension is negative or the product exceeds MaxSamples.
func (img Image) Len() int {
	if len(img.Shape) == 0 {
		return 0
	}
	n := 1
	for _, d := range img.Shape {
		if d < 0 {
			return -1
		}
		if d != 0 && n > MaxSamples/d {
			return -1
		}
		n *= d
	}
	return n
}

// Serialize encodes img as a ThermalReading, zlib compressing the samples
// first when compress is set.
func Serialize(img Image, compress bool) (payloads.ThermalReading, error) {
	if img.Len() != len(img.Pix) {
		return payloads.ThermalReading{}, fmt.Errorf("%w: %v holds %d samples, got %d", ErrShape, img.Shape, img.Len(), len(img.Pix))
	}
	data := img.Pix
	if compress {
		var buf bytes.Buffer
		zw := zlib.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return payloads.ThermalReading{}, fmt.Errorf("compress image: %w", err)
		}
		if err := zw.Close(); err != nil {
			return payloads.ThermalReading{}, fmt.Errorf("compress image: %w", err)
		}
		data = buf.Bytes()
	}
	shape := append([]int(nil), img.Shape...)
	return payloads.ThermalReading{
		Data:       base64.StdEncoding.EncodeToString(data),
		Shape:      shape,
		Compressed: compress,
	}, nil
}

// Deserialize reverses Serialize.
func Deserialize(r payloads.ThermalReading) (Image, error) {
	data, err := base64.StdEncoding.DecodeString(r.Data)
	if err != nil {
		return Image{}, fmt.Errorf("decode image: %w", err)
	}
	img := Image{Shape: append([]int(nil), r.Shape...)}
	want := img.Len()
	if want < 0 {
		return Image{}, fmt.Errorf("%w: %v is not a valid shape", ErrShape, img.Shape)
	}
	if r.Compressed {
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return Image{}, fmt.Errorf("decompress image: %w", err)
		}
		defer func() { _ = zr.Close() }()
		// one extra byte is enough to detect a stream longer than the shape
		if data, err = io.ReadAll(io.LimitReader(zr, int64(want)+1)); err != nil {
			return Image{}, fmt.Errorf("decompress image: %w", err)
		}
	}
	img.Pix = data
	if want != len(img.Pix) {
		return Image{}, fmt.Errorf("%w: %v holds %d samples, got %d", ErrShape, img.Shape, img.Len(), len(img.Pix))
	}
	return img, nil
}
