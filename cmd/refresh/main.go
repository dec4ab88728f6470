// Command refresh runs the pension pipeline once and prints an operator report.
//
//	refresh                       # all three stages
//	refresh -stage members_clean  # one stage; upstream tables must exist
//	refresh -stage contributions_enriched,member_summary
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/yungbote/pension-pipeline/internal/app"
	"github.com/yungbote/pension-pipeline/internal/domain/jobs"
	domain "github.com/yungbote/pension-pipeline/internal/domain/pension"
	"github.com/yungbote/pension-pipeline/internal/jobs/worker"
	"github.com/yungbote/pension-pipeline/internal/modules/pension"
	"github.com/yungbote/pension-pipeline/internal/pkg/dbctx"
	"github.com/yungbote/pension-pipeline/internal/reporting"
)

type stageList []string

func (s *stageList) String() string { return strings.Join(*s, ",") }

func (s *stageList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			*s = append(*s, p)
		}
	}
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	var stages stageList
	flag.Var(&stages, "stage", "stage to run (repeatable or comma separated); default runs all")
	flag.Parse()

	a, err := app.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ ERROR: %v\n", err)
		return 1
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report := reporting.New(os.Stdout)
	rep, err := a.Services.Worker.Run(ctx, worker.Request{
		Trigger: jobs.TriggerCLI,
		Stages:  stages,
	})
	if rep == nil {
		report.Run(&worker.Report{Err: err}, nil)
		return 1
	}

	var stats []domain.RiskCategoryStats
	if summaryWritten(rep) {
		stats, err = a.Services.Summary.RiskStats(dbctx.Context{Ctx: ctx})
		if err != nil {
			a.Log.Warn("Risk statistics unavailable", "error", err)
		}
	}
	report.Run(rep, stats)
	if !rep.Succeeded() {
		return 1
	}
	return 0
}

func summaryWritten(rep *worker.Report) bool {
	for _, s := range rep.Stages {
		if s.Stage == pension.StageMemberSummary && s.Err == nil {
			return true
		}
	}
	return false
}
