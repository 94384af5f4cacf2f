package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bellflight/avr/core/payloads"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		img      Image
		compress bool
	}{
		{"2d", Image{Shape: []int{2, 2}, Pix: []byte{1, 2, 3, 4}}, false},
		{"2d compressed", Image{Shape: []int{2, 2}, Pix: []byte{1, 2, 3, 4}}, true},
		{"3d", Image{Shape: []int{2, 2, 2}, Pix: []byte{1, 2, 3, 4, 5, 6, 7, 8}}, false},
		{"3d compressed", Image{Shape: []int{2, 2, 2}, Pix: []byte{1, 2, 3, 4, 5, 6, 7, 8}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reading, err := Serialize(tt.img, tt.compress)
			require.NoError(t, err)
			assert.Equal(t, tt.compress, reading.Compressed)

			out, err := Deserialize(reading)
			require.NoError(t, err)
			assert.Equal(t, tt.img, out)
		})
	}
}

func TestSerializeThroughPayload(t *testing.T) {
	reading, err := Serialize(Image{Shape: []int{1, 3}, Pix: []byte{9, 8, 7}}, true)
	require.NoError(t, err)

	body, err := payloads.Serialize(payloads.TopicThermalReading, reading)
	require.NoError(t, err)
	decoded, err := payloads.Deserialize(payloads.TopicThermalReading, body)
	require.NoError(t, err)

	img, err := Deserialize(decoded.(payloads.ThermalReading))
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 8, 7}, img.Pix)
}

func TestShapeMismatch(t *testing.T) {
	_, err := Serialize(Image{Shape: []int{3, 3}, Pix: []byte{1}}, false)
	assert.ErrorIs(t, err, ErrShape)

	_, err = Deserialize(payloads.ThermalReading{Data: "AQID", Shape: []int{2, 2}})
	assert.ErrorIs(t, err, ErrShape)
}

func TestDeserializeInvalid(t *testing.T) {
	_, err := Deserialize(payloads.ThermalReading{Data: "***", Shape: []int{1}})
	assert.Error(t, err)

	_, err = Deserialize(payloads.ThermalReading{Data: "AQID", Shape: []int{3}, Compressed: true})
	assert.Error(t, err)
}

func TestShapeOverflow(t *testing.T) {
	huge := []int{1 << 30, 1 << 30}
	assert.Equal(t, -1, Image{Shape: huge}.Len())

	_, err := Serialize(Image{Shape: huge}, false)
	assert.ErrorIs(t, err, ErrShape)

	_, err = Deserialize(payloads.ThermalReading{Data: "", Shape: huge})
	assert.ErrorIs(t, err, ErrShape)
}

func TestDeserializeStopsAtShape(t *testing.T) {
	big := make([]byte, 1<<20)
	r, err := Serialize(Image{Shape: []int{1 << 20}, Pix: big}, true)
	require.NoError(t, err)

	r.Shape = []int{16, 16}
	_, err = Deserialize(r)
	assert.ErrorIs(t, err, ErrShape)
	assert.ErrorContains(t, err, "got 257")
}
