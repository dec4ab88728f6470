package refresh

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	"github.com/yungbote/pension-pipeline/internal/domain/jobs"
	"github.com/yungbote/pension-pipeline/internal/domain/stageerr"
	"github.com/yungbote/pension-pipeline/internal/jobs/worker"
	"github.com/yungbote/pension-pipeline/internal/modules/pension"
)

type refreshSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite
	env *testsuite.TestWorkflowEnvironment
}

func (s *refreshSuite) SetupTest() {
	s.env = s.NewTestWorkflowEnvironment()
	s.env.RegisterActivityWithOptions((&Activities{}).RunStage, activity.RegisterOptions{Name: ActivityRunStage})
}

func (s *refreshSuite) AfterTest(_, _ string) {
	s.env.AssertExpectations(s.T())
}

func (s *refreshSuite) TestRunsStagesInOrder() {
	var seen []string
	var stamps []time.Time
	s.env.OnActivity(ActivityRunStage, mock.Anything, mock.Anything).Return(
		func(_ context.Context, in StageInput) (StageOutput, error) {
			seen = append(seen, in.Stage)
			stamps = append(stamps, in.ProcessingTime)
			return StageOutput{Stage: in.Stage, Rows: 2}, nil
		}).Times(3)

	s.env.ExecuteWorkflow(Workflow, Input{})
	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var res Result
	s.NoError(s.env.GetWorkflowResult(&res))
	s.Len(res.Stages, 3)
	s.Equal(DefaultStages, seen)
	s.True(stamps[0].Equal(stamps[2]), "all stages share one processing time")
}

func (s *refreshSuite) TestStopsAtFirstFailure() {
	s.env.OnActivity(ActivityRunStage, mock.Anything, mock.MatchedBy(func(in StageInput) bool {
		return in.Stage == pension.StageMembersClean
	})).Return(StageOutput{Stage: pension.StageMembersClean, Rows: 1}, nil).Once()
	s.env.OnActivity(ActivityRunStage, mock.Anything, mock.MatchedBy(func(in StageInput) bool {
		return in.Stage == pension.StageContributionsEnriched
	})).Return(StageOutput{}, errors.New("malformed period")).Once()

	s.env.ExecuteWorkflow(Workflow, Input{})
	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
}

func TestRefreshWorkflow(t *testing.T) {
	suite.Run(t, new(refreshSuite))
}

type fakeRunner struct {
	req worker.Request
	rep *worker.Report
	err error
}

func (f *fakeRunner) Run(_ context.Context, req worker.Request) (*worker.Report, error) {
	f.req = req
	return f.rep, f.err
}

func TestActivities_RunStage(t *testing.T) {
	id := uuid.New()
	processing := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	runner := &fakeRunner{rep: &worker.Report{
		Run:    &jobs.PipelineRun{ID: id},
		Stages: []worker.StageResult{{Stage: pension.StageMembersClean, Table: "members_clean", Rows: 7}},
	}}
	a := &Activities{Runner: runner}

	out, err := a.RunStage(context.Background(), StageInput{
		Stage: pension.StageMembersClean, Trigger: jobs.TriggerTemporal, ProcessingTime: processing,
	})
	require.NoError(t, err)
	require.Equal(t, id.String(), out.RunID)
	require.Equal(t, int64(7), out.Rows)
	require.Equal(t, []string{pension.StageMembersClean}, runner.req.Stages)
	require.True(t, runner.req.ProcessingTime.Equal(processing))

	runner.err = stageerr.NewError(stageerr.CodeInputUnavailable, "read", "missing", nil)
	_, err = a.RunStage(context.Background(), StageInput{Stage: pension.StageMembersClean})
	require.Error(t, err)
}
