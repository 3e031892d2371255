package container

import (
	app "mine-guard/internal/application"
	"mine-guard/internal/domain/entity"
	"mine-guard/internal/domain/port"
)

type Container struct {
	OperatorService   *app.OperatorService
	MonitoringService *app.MonitoringService
}

// Deps внешние зависимости сервисов. Describer может быть nil.
type Deps struct {
	Operators   port.OperatorRepository
	Analyzer    port.FrameAnalyzer
	Results     port.ResultStore
	Describer   port.HazardDescriber
	Fallback    port.HazardDescriber
	Calibration entity.Calibration
}

func New(deps Deps) *Container {
	operatorService := app.NewOperatorService(deps.Operators)
	monitoringService := app.NewMonitoringService(deps.Analyzer, deps.Results, deps.Describer, deps.Fallback, deps.Calibration)

	return &Container{
		OperatorService:   operatorService,
		MonitoringService: monitoringService,
	}
}
