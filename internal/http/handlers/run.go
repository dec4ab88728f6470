package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/pension-pipeline/internal/domain/jobs"
	"github.com/yungbote/pension-pipeline/internal/http/response"
	"github.com/yungbote/pension-pipeline/internal/pkg/dbctx"
	"github.com/yungbote/pension-pipeline/internal/services"
)

type RunHandler struct {
	runs services.RunService
}

func NewRunHandler(runs services.RunService) *RunHandler {
	return &RunHandler{runs: runs}
}

// POST /api/runs?stage=members_clean&stage=...
func (h *RunHandler) TriggerRun(c *gin.Context) {
	var stages []string
	for _, s := range c.QueryArray("stage") {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				stages = append(stages, part)
			}
		}
	}
	run, err := h.runs.Trigger(dbctx.Context{Ctx: c.Request.Context()}, jobs.TriggerAPI, stages)
	if err != nil {
		response.RespondStageError(c, err)
		return
	}
	response.RespondAccepted(c, gin.H{"run": run})
}

// GET /api/runs?limit=20
func (h *RunHandler) ListRuns(c *gin.Context) {
	limit := 20
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_limit", err)
			return
		}
		limit = n
	}
	runs, err := h.runs.ListRecent(dbctx.Context{Ctx: c.Request.Context()}, limit)
	if err != nil {
		response.RespondStageError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"runs": runs, "stages": h.runs.Stages()})
}

// GET /api/runs/:id
func (h *RunHandler) GetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_run_id", err)
		return
	}
	run, err := h.runs.Get(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		response.RespondStageError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"run": run})
}
