package member_summary

import (
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/pension-pipeline/internal/data/txn"
	domain "github.com/yungbote/pension-pipeline/internal/domain/pension"
	"github.com/yungbote/pension-pipeline/internal/domain/stageerr"
	jobrt "github.com/yungbote/pension-pipeline/internal/jobs/runtime"
	"github.com/yungbote/pension-pipeline/internal/modules/pension"
	"github.com/yungbote/pension-pipeline/internal/observability"
	"github.com/yungbote/pension-pipeline/internal/pkg/dbctx"
)

func (p *Pipeline) Run(jc *jobrt.Context) (int64, error) {
	if jc == nil {
		return 0, nil
	}

	var (
		members  []*domain.CleanMember
		enriched []*domain.EnrichedContribution
	)
	g, gctx := errgroup.WithContext(jc.Ctx)
	dbc := dbctx.Context{Ctx: gctx}
	g.Go(func() error {
		rows, err := p.members.ListAll(dbc)
		members = rows
		return txn.MapError("read "+p.members.Table(), stageerr.CodeInputUnavailable, err)
	})
	g.Go(func() error {
		rows, err := p.enriched.ListAll(dbc)
		enriched = rows
		return txn.MapError("read "+p.enriched.Table(), stageerr.CodeInputUnavailable, err)
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}

	rows, q := pension.Summarize(members, enriched, jc.ProcessingTime)
	jc.RecordQuality(q)
	observability.ReportDataQuality(jc.Ctx, p.log, q, map[string]any{"table": p.summary.Table()})

	var written int64
	err := p.tx.InTx(jc.Ctx, func(dbc dbctx.Context) error {
		n, err := p.summary.ReplaceAll(dbc, rows)
		written = n
		return err
	})
	if err != nil {
		return 0, txn.MapWriteError("replace "+p.summary.Table(), err)
	}

	p.log.Info("Member summary built", "rows", written, "members", len(members))
	return written, nil
}
