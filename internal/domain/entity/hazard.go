package entity

// HazardType тип опасности, который умеют выдавать экстракторы.
type HazardType string

const (
	HazardCrack             HazardType = "crack"
	HazardLooseRock         HazardType = "loose_rock"
	HazardGasLeak           HazardType = "gas_leak"
	HazardStructuralDamage  HazardType = "structural_damage"
	HazardSlopeInstability  HazardType = "slope_instability"  // зарезервирован, экстрактора пока нет
	HazardWaterAccumulation HazardType = "water_accumulation" // зарезервирован, экстрактора пока нет
)

// Severity уровень тяжести отдельной опасности.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Category описывает, как опасность отображается и насколько она тяжёлая.
type Category struct {
	Color    string   // цвет рамки в формате #RRGGBB
	Severity Severity // тяжесть для агрегатора риска
}

// FallbackCategory используется для типов вне известного набора.
var FallbackCategory = Category{Color: "#808080", Severity: SeverityLow}

var categories = map[HazardType]Category{
	HazardCrack:             {Color: "#FF0000", Severity: SeverityHigh},
	HazardLooseRock:         {Color: "#FFA500", Severity: SeverityMedium},
	HazardGasLeak:           {Color: "#0000FF", Severity: SeverityCritical},
	HazardStructuralDamage:  {Color: "#FFFF00", Severity: SeverityHigh},
	HazardSlopeInstability:  {Color: "#00FFFF", Severity: SeverityCritical},
	HazardWaterAccumulation: {Color: "#FF00FF", Severity: SeverityMedium},
}

// CategoryOf возвращает категорию типа. Для неизвестного типа отдаёт FallbackCategory,
// чтобы аннотирование и агрегация никогда не падали.
func CategoryOf(t HazardType) Category {
	if c, ok := categories[t]; ok {
		return c
	}
	return FallbackCategory
}
