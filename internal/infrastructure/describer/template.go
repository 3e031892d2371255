package describer

import (
	"context"
	"fmt"
	"strings"

	"mine-guard/internal/domain/entity"
	"mine-guard/internal/domain/port"
)

var hazardNames = map[entity.HazardType]string{
	entity.HazardCrack:             "трещина",
	entity.HazardLooseRock:         "неустойчивая порода",
	entity.HazardGasLeak:           "утечка газа",
	entity.HazardStructuralDamage:  "повреждение крепи",
	entity.HazardSlopeInstability:  "неустойчивость откоса",
	entity.HazardWaterAccumulation: "скопление воды",
}

var riskNames = map[entity.RiskLevel]string{
	entity.RiskLow:      "низкий",
	entity.RiskMedium:   "средний",
	entity.RiskHigh:     "высокий",
	entity.RiskCritical: "критический",
}

// Template собирает описание без внешних сервисов.
type Template struct{}

func NewTemplate() Template { return Template{} }

func (Template) Describe(ctx context.Context, analysis *entity.FrameAnalysis) (*entity.HazardSummary, error) {
	if analysis == nil {
		return nil, fmt.Errorf("describe: analysis is nil")
	}
	return &entity.HazardSummary{Text: Summarize(analysis)}, nil
}

// Summarize короткая сводка по кадру на русском.
func Summarize(analysis *entity.FrameAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Уровень риска: %s.", riskName(analysis.RiskLevel))

	if len(analysis.Detections) == 0 {
		b.WriteString("\nОпасностей не обнаружено.")
		return b.String()
	}

	counts := make(map[entity.HazardType]int)
	var order []entity.HazardType
	for _, d := range analysis.Detections {
		if counts[d.Type] == 0 {
			order = append(order, d.Type)
		}
		counts[d.Type]++
	}

	b.WriteString("\nОбнаружено:")
	for _, t := range order {
		fmt.Fprintf(&b, "\n• %s: %d", hazardName(t), counts[t])
	}

	switch analysis.RiskLevel {
	case entity.RiskCritical:
		b.WriteString("\nНемедленно выведите людей из зоны.")
	case entity.RiskHigh:
		b.WriteString("\nТребуется осмотр участка.")
	}
	return b.String()
}

func hazardName(t entity.HazardType) string {
	if n, ok := hazardNames[t]; ok {
		return n
	}
	return string(t)
}

func riskName(r entity.RiskLevel) string {
	if n, ok := riskNames[r]; ok {
		return n
	}
	return string(r)
}

var _ port.HazardDescriber = Template{}
