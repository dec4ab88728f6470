package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/pension-pipeline/internal/data/repos"
	"github.com/yungbote/pension-pipeline/internal/data/repos/testutil"
	"github.com/yungbote/pension-pipeline/internal/domain/jobs"
	"github.com/yungbote/pension-pipeline/internal/domain/stageerr"
	"github.com/yungbote/pension-pipeline/internal/modules/pension"
	"github.com/yungbote/pension-pipeline/internal/pkg/dbctx"
)

type stubHandler struct{ name string }

func (h stubHandler) Type() string                { return h.name }
func (h stubHandler) Run(*Context) (int64, error) { return 0, nil }

func TestRegistry_ResolveKeepsRegistrationOrder(t *testing.T) {
	reg := NewRegistry()
	for _, n := range []string{"a", "b", "c"} {
		require.NoError(t, reg.Register(stubHandler{name: n}))
	}
	require.Error(t, reg.Register(stubHandler{name: "b"}))
	require.Error(t, reg.Register(stubHandler{}))

	all, err := reg.Resolve(nil)
	require.NoError(t, err)
	require.Len(t, all, 3)

	picked, err := reg.Resolve([]string{"c", "a"})
	require.NoError(t, err)
	require.Len(t, picked, 2)
	assert.Equal(t, "a", picked[0].Type())
	assert.Equal(t, "c", picked[1].Type())

	_, err = reg.Resolve([]string{"nope"})
	require.Error(t, err)
}

type recordingNotifier struct {
	progress []string
	failed   []string
	done     int
}

func (n *recordingNotifier) RunProgress(_ *jobs.PipelineRun, stage string, _ int) {
	n.progress = append(n.progress, stage)
}
func (n *recordingNotifier) RunFailed(_ *jobs.PipelineRun, stage, _ string) {
	n.failed = append(n.failed, stage)
}
func (n *recordingNotifier) RunDone(*jobs.PipelineRun) { n.done++ }

func newRun(t *testing.T, repo repos.PipelineRunRepo) *jobs.PipelineRun {
	t.Helper()
	run, err := repo.Create(dbctx.Context{}, &jobs.PipelineRun{
		ID:          uuid.New(),
		TriggeredBy: jobs.TriggerCLI,
		Status:      jobs.RunStatusRunning,
		Stage:       "members_clean",
		Stages:      "members_clean",
	})
	require.NoError(t, err)
	return run
}

func TestContext_FailIsTerminal(t *testing.T) {
	db := testutil.DB(t)
	repo := repos.NewSet(db, testutil.Logger(t), repos.Tables{}).PipelineRun
	run := newRun(t, repo)
	notify := &recordingNotifier{}
	jc := NewContext(context.Background(), db, run, repo, notify)

	jc.Progress("members_clean", 10, "running")
	jc.Fail("members_clean", stageerr.NewError(stageerr.CodeWriteFailed, "replace", "boom", errors.New("disk")))
	jc.Succeed("members_clean", nil)

	got, err := repo.GetByID(dbctx.Context{}, run.ID)
	require.NoError(t, err)
	assert.Equal(t, jobs.RunStatusFailed, got.Status)
	assert.Equal(t, string(stageerr.CodeWriteFailed), got.ErrorCode)
	assert.Equal(t, []string{"members_clean"}, notify.progress)
	assert.Equal(t, []string{"members_clean"}, notify.failed)
	assert.Equal(t, 0, notify.done)
}

func TestContext_RecordQualityReplacesStage(t *testing.T) {
	jc := NewContext(nil, nil, nil, nil, nil)
	assert.False(t, jc.ProcessingTime.IsZero())

	jc.RecordQuality(pension.Quality{Stage: "members_clean", Metrics: map[string]int64{"invalid_records": 1}})
	jc.RecordQuality(pension.Quality{Stage: "members_clean", Metrics: map[string]int64{"invalid_records": 2}})
	q, ok := jc.Quality("members_clean")
	require.True(t, ok)
	assert.Equal(t, int64(2), q.Metrics["invalid_records"])

	_, ok = jc.Quality("member_summary")
	assert.False(t, ok)
}
