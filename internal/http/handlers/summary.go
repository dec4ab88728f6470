package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/pension-pipeline/internal/http/response"
	"github.com/yungbote/pension-pipeline/internal/pkg/dbctx"
	"github.com/yungbote/pension-pipeline/internal/services"
)

type SummaryHandler struct {
	summary services.SummaryService
}

func NewSummaryHandler(summary services.SummaryService) *SummaryHandler {
	return &SummaryHandler{summary: summary}
}

// GET /api/members/:cpr/summary
func (h *SummaryHandler) GetMemberSummary(c *gin.Context) {
	rows, err := h.summary.MemberSummary(dbctx.Context{Ctx: c.Request.Context()}, c.Param("cpr"))
	if err != nil {
		response.RespondStageError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"summaries": rows})
}

// GET /api/summary/risk-stats
func (h *SummaryHandler) GetRiskStats(c *gin.Context) {
	stats, err := h.summary.RiskStats(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		response.RespondStageError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"risk_stats": stats})
}
