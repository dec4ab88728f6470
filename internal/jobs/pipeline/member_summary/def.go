package member_summary

import (
	"github.com/yungbote/pension-pipeline/internal/data/repos"
	"github.com/yungbote/pension-pipeline/internal/data/txn"
	"github.com/yungbote/pension-pipeline/internal/modules/pension"
	"github.com/yungbote/pension-pipeline/internal/pkg/logger"
)

type Pipeline struct {
	log      *logger.Logger
	members  repos.CleanMemberRepo
	enriched repos.EnrichedContributionRepo
	summary  repos.MemberSummaryRepo
	tx       txn.Runner
}

func New(
	baseLog *logger.Logger,
	members repos.CleanMemberRepo,
	enriched repos.EnrichedContributionRepo,
	summary repos.MemberSummaryRepo,
	tx txn.Runner,
) *Pipeline {
	return &Pipeline{
		log:      baseLog.With("job", pension.StageMemberSummary),
		members:  members,
		enriched: enriched,
		summary:  summary,
		tx:       tx,
	}
}

func (p *Pipeline) Type() string { return pension.StageMemberSummary }

func (p *Pipeline) OutputTable() string { return p.summary.Table() }
