package contributions_enriched

import (
	"github.com/yungbote/pension-pipeline/internal/data/repos"
	"github.com/yungbote/pension-pipeline/internal/data/txn"
	"github.com/yungbote/pension-pipeline/internal/modules/pension"
	"github.com/yungbote/pension-pipeline/internal/pkg/logger"
)

type Pipeline struct {
	log           *logger.Logger
	contributions repos.RawContributionRepo
	members       repos.CleanMemberRepo
	employers     repos.RawEmployerRepo
	enriched      repos.EnrichedContributionRepo
	tx            txn.Runner
	policy        pension.MalformedPeriodPolicy
	thresholds    pension.Thresholds
}

type Deps struct {
	Contributions repos.RawContributionRepo
	Members       repos.CleanMemberRepo
	Employers     repos.RawEmployerRepo
	Enriched      repos.EnrichedContributionRepo
	Tx            txn.Runner
	Policy        pension.MalformedPeriodPolicy
	Thresholds    pension.Thresholds
}

func New(baseLog *logger.Logger, deps Deps) *Pipeline {
	policy := deps.Policy
	if policy == "" {
		policy = pension.PolicyFail
	}
	return &Pipeline{
		log:           baseLog.With("job", pension.StageContributionsEnriched),
		contributions: deps.Contributions,
		members:       deps.Members,
		employers:     deps.Employers,
		enriched:      deps.Enriched,
		tx:            deps.Tx,
		policy:        policy,
		thresholds:    deps.Thresholds,
	}
}

func (p *Pipeline) Type() string { return pension.StageContributionsEnriched }

func (p *Pipeline) OutputTable() string { return p.enriched.Table() }
