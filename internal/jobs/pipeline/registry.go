package pipeline

import (
	"github.com/yungbote/pension-pipeline/internal/data/repos"
	"github.com/yungbote/pension-pipeline/internal/data/txn"
	"github.com/yungbote/pension-pipeline/internal/jobs/pipeline/contributions_enriched"
	"github.com/yungbote/pension-pipeline/internal/jobs/pipeline/member_summary"
	"github.com/yungbote/pension-pipeline/internal/jobs/pipeline/members_clean"
	"github.com/yungbote/pension-pipeline/internal/jobs/runtime"
	"github.com/yungbote/pension-pipeline/internal/modules/pension"
	"github.com/yungbote/pension-pipeline/internal/pkg/logger"
)

type Options struct {
	Policy     pension.MalformedPeriodPolicy
	Thresholds pension.Thresholds
}

// NewRegistry registers the three stages in dependency order.
func NewRegistry(log *logger.Logger, set repos.Set, tx txn.Runner, opts Options) (*runtime.Registry, error) {
	reg := runtime.NewRegistry()

	if err := reg.Register(members_clean.New(log, set.RawMember, set.CleanMember, tx, opts.Thresholds)); err != nil {
		return nil, err
	}
	if err := reg.Register(contributions_enriched.New(log, contributions_enriched.Deps{
		Contributions: set.RawContribution,
		Members:       set.CleanMember,
		Employers:     set.RawEmployer,
		Enriched:      set.EnrichedContribution,
		Tx:            tx,
		Policy:        opts.Policy,
		Thresholds:    opts.Thresholds,
	})); err != nil {
		return nil, err
	}
	if err := reg.Register(member_summary.New(log, set.CleanMember, set.EnrichedContribution, set.MemberSummary, tx)); err != nil {
		return nil, err
	}
	return reg, nil
}
