package entity

import "time"

// FrameSize размеры растра кадра.
type FrameSize struct {
	Width  int
	Height int
}

// FrameQuality информационный отчёт о качестве кадра. Кадр из-за него не отклоняется.
type FrameQuality struct {
	EdgeRatio         float64  `json:"edge_ratio"`
	OverexposedRatio  float64  `json:"overexposed_ratio"`
	UnderexposedRatio float64  `json:"underexposed_ratio"`
	GlareRatio        float64  `json:"glare_ratio"`
	Warnings          []string `json:"warnings,omitempty"`
}

// FrameAnalysis хранит итог анализа одного кадра.
type FrameAnalysis struct {
	Detections     []Detection   // детекции в порядке crack, loose_rock, structural_damage, gas_leak
	RiskLevel      RiskLevel     // итоговый риск
	AnnotatedImage []byte        // JPEG с рамками
	Width          int           // ширина кадра
	Height         int           // высота кадра
	Quality        *FrameQuality // может быть nil
}

// AnalysisRecord запись истории обработанных кадров.
type AnalysisRecord struct {
	ID          int64       `json:"id"`
	ProcessedAt time.Time   `json:"processed_at"`
	Source      string      `json:"source"`
	RiskLevel   RiskLevel   `json:"risk_level"`
	Detections  []Detection `json:"detections"`
}

// HazardSummary текстовое описание найденных опасностей.
type HazardSummary struct {
	Text string
}
