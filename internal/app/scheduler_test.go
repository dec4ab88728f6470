package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/pension-pipeline/internal/data/repos"
	"github.com/yungbote/pension-pipeline/internal/data/repos/testutil"
	"github.com/yungbote/pension-pipeline/internal/data/txn"
	"github.com/yungbote/pension-pipeline/internal/domain/jobs"
	"github.com/yungbote/pension-pipeline/internal/jobs/pipeline"
	"github.com/yungbote/pension-pipeline/internal/jobs/worker"
	"github.com/yungbote/pension-pipeline/internal/modules/pension"
	"github.com/yungbote/pension-pipeline/internal/pkg/dbctx"
	"github.com/yungbote/pension-pipeline/internal/temporalx"
)

func TestNewScheduler_RejectsBadSpec(t *testing.T) {
	_, err := NewScheduler(testutil.Logger(t), "every tuesday", func(context.Context) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PIPELINE_SCHEDULE")
}

func TestScheduler_TickCallsFire(t *testing.T) {
	calls := 0
	s, err := NewScheduler(testutil.Logger(t), "@daily", func(ctx context.Context) error {
		calls++
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return errors.New("boom")
	})
	require.NoError(t, err)

	s.tick()
	s.tick()
	assert.Equal(t, 2, calls)
}

func TestScheduleFire_InProcess(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()
	testutil.SeedMembers(t, ctx, db, testutil.Member("010190-1234", "Anna", "Jensen", "1990-01-01"))
	testutil.SeedEmployers(t, ctx, db, testutil.Employer("12345678", "Novo Nordisk A/S", "Pharma", "Large"))
	testutil.SeedContributions(t, ctx, db,
		testutil.Contribution("C1", "010190-1234", "12345678", "2024-01", 200, 70, "2024-02-05"),
	)

	set := repos.NewSet(db, log, repos.Tables{})
	reg, err := pipeline.NewRegistry(log, set, txn.NewGormRunner(db), pipeline.Options{Thresholds: pension.DefaultThresholds()})
	require.NoError(t, err)
	w := worker.NewWorker(db, log, set.PipelineRun, reg, nil, nil)

	fire := scheduleFire(log, w, nil, temporalx.Config{})
	require.NoError(t, fire(ctx))

	runs, err := set.PipelineRun.ListRecent(dbctx.Context{Ctx: ctx}, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, jobs.TriggerSchedule, runs[0].TriggeredBy)
	assert.Equal(t, jobs.RunStatusSucceeded, runs[0].Status)
}

func TestScheduleFire_InProcessReportsStageFailure(t *testing.T) {
	db := testutil.EmptyDB(t)
	log := testutil.Logger(t)
	require.NoError(t, db.AutoMigrate(&jobs.PipelineRun{}))

	set := repos.NewSet(db, log, repos.Tables{})
	reg, err := pipeline.NewRegistry(log, set, txn.NewGormRunner(db), pipeline.Options{Thresholds: pension.DefaultThresholds()})
	require.NoError(t, err)
	w := worker.NewWorker(db, log, set.PipelineRun, reg, nil, nil)

	err = scheduleFire(log, w, nil, temporalx.Config{})(context.Background())
	require.Error(t, err)
}
