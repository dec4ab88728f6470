package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/yungbote/pension-pipeline/internal/data/repos/testutil"
	domain "github.com/yungbote/pension-pipeline/internal/domain/jobs"
	"github.com/yungbote/pension-pipeline/internal/pkg/dbctx"
)

func TestPipelineRunRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewPipelineRunRepo(db, testutil.Logger(t))

	now := time.Now().UTC()
	older := &domain.PipelineRun{
		TriggeredBy:    domain.TriggerCLI,
		Status:         domain.RunStatusSucceeded,
		Stage:          "member_summary",
		Stages:         "members_clean,contributions_enriched,member_summary",
		Progress:       100,
		ProcessingTime: now.Add(-time.Hour),
		Result:         datatypes.JSON([]byte(`{}`)),
		StartedAt:      now.Add(-time.Hour),
	}
	newer := &domain.PipelineRun{
		TriggeredBy:    domain.TriggerAPI,
		Status:         domain.RunStatusRunning,
		Stage:          "members_clean",
		Stages:         "members_clean",
		ProcessingTime: now,
		Result:         datatypes.JSON([]byte(`{}`)),
		StartedAt:      now,
	}
	_, err := repo.Create(dbc, older)
	require.NoError(t, err)
	_, err = repo.Create(dbc, newer)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, newer.ID)

	recent, err := repo.ListRecent(dbc, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, newer.ID, recent[0].ID)

	got, err := repo.GetByID(dbc, newer.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.TriggerAPI, got.TriggeredBy)

	missing, err := repo.GetByID(dbc, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.UpdateFields(dbc, newer.ID, map[string]interface{}{
		"status":   domain.RunStatusFailed,
		"progress": 40,
	}))
	ok, err := repo.UpdateFieldsUnlessStatus(dbc, newer.ID, []string{domain.RunStatusFailed, domain.RunStatusSucceeded}, map[string]interface{}{
		"status": domain.RunStatusSucceeded,
	})
	require.NoError(t, err)
	assert.False(t, ok, "terminal run must not be overwritten")

	got, err = repo.GetByID(dbc, newer.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusFailed, got.Status)
	assert.Equal(t, 40, got.Progress)
	assert.True(t, got.Terminal())
}
