// Package codec переводит кадры между транспортным видом (data URI, base64, сырые байты)
// и image.Image.
package codec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"

	"mine-guard/internal/domain/entity"
)

// DefaultJPEGQuality качество JPEG по умолчанию для размеченных кадров.
const DefaultJPEGQuality = 90

// ParsePayload достаёт байты изображения из data URI, голого base64 или сырых байт.
func ParsePayload(payload []byte) ([]byte, error) {
	// Сырые байты не обрезаем: пробельные байты в хвосте могут быть пикселями.
	if isRawImage(payload) {
		return payload, nil
	}

	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, entity.NewDecodeError("empty payload", entity.ErrEmptyPayload)
	}

	s := string(trimmed)
	if len(s) >= len(dataPrefix) && strings.EqualFold(s[:len(dataPrefix)], dataPrefix) {
		// data:<mime>;base64,<payload>
		idx := strings.IndexByte(s, ',')
		if idx < 0 {
			return nil, entity.NewDecodeError("malformed data URI", errors.New("missing comma"))
		}
		meta := s[len(dataPrefix):idx]
		if len(meta) < len(base64Marker) || !strings.EqualFold(meta[len(meta)-len(base64Marker):], base64Marker) {
			return nil, entity.NewDecodeError("malformed data URI", fmt.Errorf("unsupported encoding in %q", meta))
		}
		s = s[idx+1:]
	}

	data, err := decodeBase64(s)
	if err != nil {
		return nil, entity.NewDecodeError("invalid base64 payload", err)
	}
	if len(data) == 0 {
		return nil, entity.NewDecodeError("empty payload", entity.ErrEmptyPayload)
	}
	return data, nil
}

const (
	dataPrefix   = "data:"
	base64Marker = ";base64"
)

// http.DetectContentType не знает TIFF
var tiffSignatures = [][]byte{
	[]byte("II*\x00"),
	[]byte("MM\x00*"),
}

// isRawImage узнаёт сырые байты картинки по сигнатуре.
func isRawImage(payload []byte) bool {
	if len(payload) == 0 {
		return false
	}
	for _, sig := range tiffSignatures {
		if bytes.HasPrefix(payload, sig) {
			return true
		}
	}
	return strings.HasPrefix(http.DetectContentType(payload), "image/")
}

// decodeBase64 пробует стандартный алфавит, затем URL-safe и варианты без паддинга.
func decodeBase64(s string) ([]byte, error) {
	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.RawURLEncoding,
	}
	var firstErr error
	for _, enc := range encodings {
		b, err := enc.DecodeString(s)
		if err == nil {
			return b, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

// Decode декодирует байты изображения с учётом EXIF-ориентации.
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, entity.NewDecodeError("not a decodable image", err)
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, entity.NewDecodeError(fmt.Sprintf("zero-size image %dx%d", b.Dx(), b.Dy()), nil)
	}
	return img, nil
}

// DecodeFrame разбирает транспортный вид кадра и декодирует изображение.
func DecodeFrame(payload []byte) (image.Image, error) {
	data, err := ParsePayload(payload)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// EncodeJPEG кодирует изображение в JPEG.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURI собирает data URI из MIME и байт.
func DataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
