package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"mine-guard/internal/domain/entity"
	"mine-guard/internal/domain/port"
)

// MonitoringService управляет обработкой кадров и состоянием мониторинга шахты.
type MonitoringService struct {
	analyzer  port.FrameAnalyzer
	describer port.HazardDescriber
	fallback  port.HazardDescriber
	results   port.ResultStore

	mu          sync.RWMutex
	active      bool
	calibration entity.Calibration
	last        *entity.AnalysisRecord

	now func() time.Time
}

// FrameOutput результат обработки одного кадра.
type FrameOutput struct {
	Analysis *entity.FrameAnalysis
	Record   *entity.AnalysisRecord
}

// Status снимок состояния мониторинга.
type Status struct {
	Active      bool
	Results     []entity.Detection // детекции последнего кадра, пустой список до первого кадра
	RiskLevel   entity.RiskLevel
	ProcessedAt time.Time // нулевое значение, если кадров ещё не было
}

// NewMonitoringService создаёт сервис. describer может быть nil, тогда работает только fallback.
func NewMonitoringService(
	analyzer port.FrameAnalyzer,
	results port.ResultStore,
	describer port.HazardDescriber,
	fallback port.HazardDescriber,
	cal entity.Calibration,
) *MonitoringService {
	return &MonitoringService{
		analyzer:    analyzer,
		describer:   describer,
		fallback:    fallback,
		results:     results,
		calibration: cal,
		now:         time.Now,
	}
}

// ProcessFrame прогоняет кадр через конвейер и сохраняет итог в историю.
// Флаг активности не проверяется: кадр по запросу обрабатывается всегда.
func (s *MonitoringService) ProcessFrame(ctx context.Context, source string, payload []byte) (*FrameOutput, error) {
	if s.analyzer == nil {
		return nil, errors.New("analyzer is not configured")
	}
	if len(payload) == 0 {
		return nil, entity.ErrEmptyPayload
	}

	analysis, err := s.analyzer.Analyze(ctx, payload, s.Calibration())
	if err != nil {
		return nil, err
	}

	record := &entity.AnalysisRecord{
		ProcessedAt: s.now(),
		Source:      source,
		RiskLevel:   analysis.RiskLevel,
		Detections:  analysis.Detections,
	}
	if s.results != nil {
		if err := s.results.Save(ctx, record); err != nil {
			log.Printf("Failed to save analysis: %v", err)
		}
	}

	s.mu.Lock()
	s.last = record
	s.mu.Unlock()

	if analysis.RiskLevel == entity.RiskCritical {
		log.Printf("Critical risk detected from %s: %d hazards", source, len(analysis.Detections))
	}
	return &FrameOutput{Analysis: analysis, Record: record}, nil
}

func (s *MonitoringService) Start() {
	s.mu.Lock()
	s.active = true
	s.mu.Unlock()
	log.Printf("AI detection started")
}

func (s *MonitoringService) Stop() {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
	log.Printf("AI detection stopped")
}

// EmergencyStop выключает мониторинг и возвращает момент остановки.
func (s *MonitoringService) EmergencyStop() time.Time {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
	log.Printf("EMERGENCY STOP ACTIVATED")
	return s.now()
}

func (s *MonitoringService) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Status снимок состояния. До первого кадра в этом процессе берёт последнюю запись из истории,
// чтобы после перезапуска статус не обнулялся.
func (s *MonitoringService) Status(ctx context.Context) Status {
	s.mu.RLock()
	active, last := s.active, s.last
	s.mu.RUnlock()

	if last == nil && s.results != nil {
		latest, err := s.results.Latest(ctx)
		switch {
		case err == nil:
			last = latest
			s.mu.Lock()
			if s.last == nil {
				s.last = latest
			}
			s.mu.Unlock()
		case !errors.Is(err, port.ErrNoResults):
			log.Printf("Failed to load latest analysis: %v", err)
		}
	}

	st := Status{Active: active, Results: []entity.Detection{}, RiskLevel: entity.RiskLow}
	if last != nil {
		st.Results = append(st.Results, last.Detections...)
		st.RiskLevel = last.RiskLevel
		st.ProcessedAt = last.ProcessedAt
	}
	return st
}

// Calibrate накладывает частичный JSON поверх текущей калибровки.
// Невалидный результат отклоняется целиком.
func (s *MonitoringService) Calibrate(patch []byte) (entity.Calibration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.calibration
	if len(patch) > 0 {
		if err := json.Unmarshal(patch, &next); err != nil {
			return s.calibration, fmt.Errorf("%w: %v", entity.ErrInvalidCalibration, err)
		}
	}
	if err := next.Validate(); err != nil {
		return s.calibration, fmt.Errorf("%w: %v", entity.ErrInvalidCalibration, err)
	}

	s.calibration = next
	log.Printf("Calibration updated: %s", patch)
	return next, nil
}

// SetCalibration заменяет калибровку целиком.
func (s *MonitoringService) SetCalibration(cal entity.Calibration) error {
	if err := cal.Validate(); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrInvalidCalibration, err)
	}
	s.mu.Lock()
	s.calibration = cal
	s.mu.Unlock()
	return nil
}

func (s *MonitoringService) Calibration() entity.Calibration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calibration
}

// History последние записи, новые первыми.
func (s *MonitoringService) History(ctx context.Context, limit int) ([]entity.AnalysisRecord, error) {
	if s.results == nil {
		return []entity.AnalysisRecord{}, nil
	}
	records, err := s.results.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []entity.AnalysisRecord{}
	}
	return records, nil
}

// Describe пробует основной описатель и при ошибке откатывается на шаблонный.
func (s *MonitoringService) Describe(ctx context.Context, analysis *entity.FrameAnalysis) (*entity.HazardSummary, error) {
	if s.describer != nil {
		summary, err := s.describer.Describe(ctx, analysis)
		if err == nil {
			return summary, nil
		}
		log.Printf("Describer failed, using template: %v", err)
	}
	if s.fallback == nil {
		return nil, errors.New("describer is not configured")
	}
	return s.fallback.Describe(ctx, analysis)
}
