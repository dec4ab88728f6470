package contributions_enriched

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
		contribs  []*domain.RawContribution
		members   []*domain.CleanMember
		employers []*domain.RawEmployer
	)
	g, gctx := errgroup.WithContext(jc.Ctx)
	dbc := dbctx.Context{Ctx: gctx}
	g.Go(func() error {
		rows, err := p.contributions.ListAll(dbc)
		contribs = rows
		return txn.MapError("read "+p.contributions.Table(), stageerr.CodeInputUnavailable, err)
	})
	g.Go(func() error {
		rows, err := p.members.ListAll(dbc)
		members = rows
		return txn.MapError("read "+p.members.Table(), stageerr.CodeInputUnavailable, err)
	})
	g.Go(func() error {
		rows, err := p.employers.ListAll(dbc)
		employers = rows
		return txn.MapError("read "+p.employers.Table(), stageerr.CodeInputUnavailable, err)
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}

	rows, q, err := pension.EnrichContributions(contribs, members, employers, pension.EnrichOptions{
		AsOf:       jc.ProcessingTime,
		Policy:     p.policy,
		Thresholds: p.thresholds,
	})
	jc.RecordQuality(q)
	if err != nil {
		return 0, err
	}
	observability.ReportDataQuality(jc.Ctx, p.log, q, map[string]any{"table": p.enriched.Table()})

	var written int64
	err = p.tx.InTx(jc.Ctx, func(dbc dbctx.Context) error {
		n, err := p.enriched.ReplaceAll(dbc, rows)
		written = n
		return err
	})
	if err != nil {
		return 0, txn.MapWriteError("replace "+p.enriched.Table(), err)
	}

	p.log.Info("Contributions enriched",
		"rows", written,
		"input_rows", len(contribs),
		"late", q.Metrics[pension.MetricLateContributions],
		"anomalies", q.Metrics[pension.MetricAnomalies],
	)
	return written, nil
}
