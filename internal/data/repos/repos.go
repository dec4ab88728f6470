package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/pension-pipeline/internal/data/repos/jobs"
	"github.com/yungbote/pension-pipeline/internal/data/repos/pension"
	"github.com/yungbote/pension-pipeline/internal/pkg/logger"
)

type RawMemberRepo = pension.RawMemberRepo
type RawEmployerRepo = pension.RawEmployerRepo
type RawContributionRepo = pension.RawContributionRepo

type CleanMemberRepo = pension.CleanMemberRepo
type EnrichedContributionRepo = pension.EnrichedContributionRepo
type MemberSummaryRepo = pension.MemberSummaryRepo

type PipelineRunRepo = jobs.PipelineRunRepo

// Tables names the physical tables. Empty fields fall back to the model defaults.
type Tables struct {
	RawMembers            string `yaml:"raw_members"`
	RawEmployers          string `yaml:"raw_employers"`
	RawContributions      string `yaml:"raw_contributions"`
	MembersClean          string `yaml:"members_clean"`
	ContributionsEnriched string `yaml:"contributions_enriched"`
	MemberSummary         string `yaml:"member_summary"`
}

// Set is every repo the pipeline needs, bound to one database.
type Set struct {
	RawMember            RawMemberRepo
	RawEmployer          RawEmployerRepo
	RawContribution      RawContributionRepo
	CleanMember          CleanMemberRepo
	EnrichedContribution EnrichedContributionRepo
	MemberSummary        MemberSummaryRepo
	PipelineRun          PipelineRunRepo
}

func NewSet(db *gorm.DB, baseLog *logger.Logger, tables Tables) Set {
	return Set{
		RawMember:            pension.NewRawMemberRepo(db, baseLog, tables.RawMembers),
		RawEmployer:          pension.NewRawEmployerRepo(db, baseLog, tables.RawEmployers),
		RawContribution:      pension.NewRawContributionRepo(db, baseLog, tables.RawContributions),
		CleanMember:          pension.NewCleanMemberRepo(db, baseLog, tables.MembersClean),
		EnrichedContribution: pension.NewEnrichedContributionRepo(db, baseLog, tables.ContributionsEnriched),
		MemberSummary:        pension.NewMemberSummaryRepo(db, baseLog, tables.MemberSummary),
		PipelineRun:          jobs.NewPipelineRunRepo(db, baseLog),
	}
}
