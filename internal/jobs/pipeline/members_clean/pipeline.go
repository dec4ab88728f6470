package members_clean

import (
	"github.com/yungbote/pension-pipeline/internal/data/txn"
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

	raw, err := p.raw.ListAll(dbctx.Context{Ctx: jc.Ctx})
	if err != nil {
		return 0, txn.MapError("read "+p.raw.Table(), stageerr.CodeInputUnavailable, err)
	}

	rows, q := pension.CleanMembers(raw, jc.ProcessingTime, p.thresholds)
	jc.RecordQuality(q)
	observability.ReportDataQuality(jc.Ctx, p.log, q, map[string]any{"table": p.clean.Table()})

	var written int64
	err = p.tx.InTx(jc.Ctx, func(dbc dbctx.Context) error {
		n, err := p.clean.ReplaceAll(dbc, rows)
		written = n
		return err
	})
	if err != nil {
		return 0, txn.MapWriteError("replace "+p.clean.Table(), err)
	}

	p.log.Info("Members cleaned",
		"rows", written,
		"invalid_records", q.Metrics[pension.MetricInvalidRecords],
	)
	return written, nil
}
