package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mine-guard/internal/domain/entity"
	"mine-guard/internal/domain/port"
)

func TestMemoryOperatorRepository_GetCreatesOnce(t *testing.T) {
	repo := NewMemoryOperatorRepository()
	ctx := context.Background()

	first, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateIdle, first.State)

	first.SetState(entity.StateMonitoring)
	require.NoError(t, repo.Save(ctx, first))

	again, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Same(t, first, again)
	require.Equal(t, entity.StateMonitoring, again.State)
}

func TestMemoryOperatorRepository_SaveReplaces(t *testing.T) {
	repo := NewMemoryOperatorRepository()
	ctx := context.Background()

	op := entity.NewOperator(7, 70)
	op.SetState(entity.StateProcessing)
	require.NoError(t, repo.Save(ctx, op))

	got, err := repo.Get(ctx, 7, 70)
	require.NoError(t, err)
	require.Equal(t, entity.StateProcessing, got.State)
}

func TestMemoryResultStore_Empty(t *testing.T) {
	store := NewMemoryResultStore(3)
	_, err := store.Latest(context.Background())
	require.ErrorIs(t, err, port.ErrNoResults)

	recent, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, recent)
}

func TestMemoryResultStore_BoundedNewestFirst(t *testing.T) {
	store := NewMemoryResultStore(3)
	ctx := context.Background()
	base := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		rec := &entity.AnalysisRecord{ProcessedAt: base.Add(time.Duration(i) * time.Second), RiskLevel: entity.RiskLow}
		require.NoError(t, store.Save(ctx, rec))
		require.Equal(t, int64(i+1), rec.ID)
	}

	recent, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	require.Equal(t, []int64{5, 4, 3}, []int64{recent[0].ID, recent[1].ID, recent[2].ID})

	two, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, two, 2)

	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(5), latest.ID)
}

func TestMemoryResultStore_CopiesDetections(t *testing.T) {
	store := NewMemoryResultStore(2)
	ctx := context.Background()

	dets := []entity.Detection{entity.NewDetection(entity.HazardCrack, 0.4, entity.BBox{X1: 1, Y1: 1, X2: 5, Y2: 5})}
	require.NoError(t, store.Save(ctx, &entity.AnalysisRecord{Detections: dets}))
	dets[0] = entity.NewDetection(entity.HazardGasLeak, 0.9, entity.BBox{})

	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	require.Equal(t, entity.HazardCrack, latest.Detections[0].Type)
}
