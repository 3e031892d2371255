package entity

import (
	"errors"
	"fmt"
)

// ErrEmptyPayload кадр пришёл без данных.
var ErrEmptyPayload = errors.New("no image data provided")

// ErrInvalidCalibration калибровка отклонена, текущая осталась без изменений.
var ErrInvalidCalibration = errors.New("invalid calibration")

// DecodeError кадр не удалось превратить в растр. Повторять запрос с тем же кадром бессмысленно.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode frame: %s: %v", e.Reason, e.Err)
	}
	return "decode frame: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// NewDecodeError оборачивает причину ошибки декодирования.
func NewDecodeError(reason string, err error) error {
	return &DecodeError{Reason: reason, Err: err}
}

// IsDecodeError сообщает, относится ли ошибка к декодированию кадра.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// ExtractionError отказ одного экстрактора. Конвейер его логирует и продолжает без вклада экстрактора.
type ExtractionError struct {
	Extractor HazardType
	Err       error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Extractor, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
