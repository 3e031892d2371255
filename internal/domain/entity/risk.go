package entity

// RiskLevel итоговый уровень риска по всему кадру.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// AggregateRisk сводит тяжести детекций в один уровень риска.
// Правила проверяются строго по порядку, первое сработавшее побеждает.
func AggregateRisk(detections []Detection) RiskLevel {
	if len(detections) == 0 {
		return RiskLow
	}

	var critical, high, medium int
	for _, d := range detections {
		switch d.Severity {
		case SeverityCritical:
			critical++
		case SeverityHigh:
			high++
		case SeverityMedium:
			medium++
		}
	}

	switch {
	case critical > 0:
		return RiskCritical
	case high >= 2:
		return RiskHigh
	case high > 0 || medium >= 3:
		return RiskMedium
	default:
		return RiskLow
	}
}
