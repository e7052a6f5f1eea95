package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/narrative-weaver/internal/application"
	"github.com/oksasatya/narrative-weaver/pkg/response"
)

type AIHandler struct {
	Svc    *application.SummaryService
	Logger *logrus.Logger
}

func NewAIHandler(svc *application.SummaryService, logger *logrus.Logger) *AIHandler {
	return &AIHandler{Svc: svc, Logger: logger}
}

type rangeQuery struct {
	Range           string `form:"range" json:"range"`
	CustomStartDate string `form:"customStartDate" json:"customStartDate"`
	CustomEndDate   string `form:"customEndDate" json:"customEndDate"`
}

func (q rangeQuery) request() application.RangeRequest {
	return application.RangeRequest{Range: q.Range, CustomStart: q.CustomStartDate, CustomEnd: q.CustomEndDate}
}

func (h *AIHandler) Summary(c *gin.Context) {
	h.summarize(c, application.ModeStandard, "summary")
}

func (h *AIHandler) DeeperAnalysis(c *gin.Context) {
	h.summarize(c, application.ModeDeeper, "analysis")
}

func (h *AIHandler) summarize(c *gin.Context, mode application.Mode, field string) {
	var q rangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	text, err := h.Svc.Summarize(c.Request.Context(), c.GetString("userID"), q.request(), mode)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{field: text}, field, nil)
}
