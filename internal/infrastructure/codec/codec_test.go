package codec

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"

	"mine-guard/internal/domain/entity"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 90, G: 90, B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestParsePayload_Forms(t *testing.T) {
	raw := pngBytes(t, 8, 6)
	b64 := base64.StdEncoding.EncodeToString(raw)

	got, err := ParsePayload(raw)
	require.NoError(t, err)
	require.Equal(t, raw, got)

	got, err = ParsePayload([]byte("data:image/png;base64," + b64))
	require.NoError(t, err)
	require.Equal(t, raw, got)

	got, err = ParsePayload([]byte("  " + b64 + "\n"))
	require.NoError(t, err)
	require.Equal(t, raw, got)
}

func encodeFilled(t *testing.T, format imaging.Format, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, format))
	return buf.Bytes()
}

func TestDecodeFrame_DarkRawBMPKeepsTrailingBytes(t *testing.T) {
	// 0x20 совпадает с пробелом
	raw := encodeFilled(t, imaging.BMP, color.RGBA{R: 32, G: 32, B: 32, A: 255})
	require.Equal(t, byte(0x20), raw[len(raw)-1])

	got, err := ParsePayload(raw)
	require.NoError(t, err)
	require.Equal(t, raw, got)

	img, err := DecodeFrame(raw)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 4, 4), img.Bounds())
}

func TestDecodeFrame_RawTIFF(t *testing.T) {
	raw := encodeFilled(t, imaging.TIFF, color.RGBA{R: 90, G: 60, B: 30, A: 255})

	got, err := ParsePayload(raw)
	require.NoError(t, err)
	require.Equal(t, raw, got)

	img, err := DecodeFrame(raw)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 4, 4), img.Bounds())
}

func TestParsePayload_DataURICaseInsensitive(t *testing.T) {
	raw := pngBytes(t, 8, 6)
	b64 := base64.StdEncoding.EncodeToString(raw)

	for _, prefix := range []string{"DATA:image/png;BASE64,", "Data:image/png;Base64,"} {
		got, err := ParsePayload([]byte(prefix + b64))
		require.NoError(t, err, prefix)
		require.Equal(t, raw, got, prefix)
	}
}

func TestParsePayload_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"blank":       "   ",
		"no comma":    "data:image/png;base64",
		"not base64":  "data:image/png,plain-text",
		"bad payload": "data:image/png;base64,@@@",
	}
	for name, payload := range cases {
		_, err := ParsePayload([]byte(payload))
		require.Error(t, err, name)
		require.True(t, entity.IsDecodeError(err), name)
	}

	_, err := ParsePayload(nil)
	require.ErrorIs(t, err, entity.ErrEmptyPayload)
}

func TestDecodeFrame(t *testing.T) {
	raw := pngBytes(t, 64, 48)
	img, err := DecodeFrame([]byte(DataURI("image/png", raw)))
	require.NoError(t, err)
	require.Equal(t, 64, img.Bounds().Dx())
	require.Equal(t, 48, img.Bounds().Dy())
}

func TestDecodeFrame_NotAnImage(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("definitely not an image"))
	_, err := DecodeFrame([]byte(payload))
	require.Error(t, err)
	require.True(t, entity.IsDecodeError(err))
}

func TestEncodeJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 16))
	data, err := EncodeJPEG(img, 0)
	require.NoError(t, err)
	require.Equal(t, []byte{0xFF, 0xD8}, data[:2])

	back, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 32, 16), back.Bounds())
}

func TestDataURI(t *testing.T) {
	require.Equal(t, "data:image/jpeg;base64,AQID", DataURI("image/jpeg", []byte{1, 2, 3}))
}
