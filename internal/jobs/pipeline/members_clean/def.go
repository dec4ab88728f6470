package members_clean

import (
	"github.com/yungbote/pension-pipeline/internal/data/repos"
	"github.com/yungbote/pension-pipeline/internal/data/txn"
	"github.com/yungbote/pension-pipeline/internal/modules/pension"
	"github.com/yungbote/pension-pipeline/internal/pkg/logger"
)

type Pipeline struct {
	log        *logger.Logger
	raw        repos.RawMemberRepo
	clean      repos.CleanMemberRepo
	tx         txn.Runner
	thresholds pension.Thresholds
}

func New(
	baseLog *logger.Logger,
	raw repos.RawMemberRepo,
	clean repos.CleanMemberRepo,
	tx txn.Runner,
	thresholds pension.Thresholds,
) *Pipeline {
	return &Pipeline{
		log:        baseLog.With("job", pension.StageMembersClean),
		raw:        raw,
		clean:      clean,
		tx:         tx,
		thresholds: thresholds,
	}
}

func (p *Pipeline) Type() string { return pension.StageMembersClean }

func (p *Pipeline) OutputTable() string { return p.clean.Table() }
