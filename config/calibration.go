package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"mine-guard/internal/domain/entity"
)

// LoadCalibration читает калибровку из YAML.
// Если файла нет, возвращает заводские значения. Отсутствующие в файле поля остаются заводскими.
func LoadCalibration(path string) (entity.Calibration, error) {
	cal := entity.DefaultCalibration()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cal, nil
		}
		return cal, err
	}

	if err := yaml.Unmarshal(data, &cal); err != nil {
		return entity.DefaultCalibration(), fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cal.Validate(); err != nil {
		return entity.DefaultCalibration(), fmt.Errorf("%s: %w", path, err)
	}

	return cal, nil
}
