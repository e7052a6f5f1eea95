package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/narrative-weaver/internal/application"
)

type ExportHandler struct {
	Svc    *application.ExportService
	Logger *logrus.Logger
}

func NewExportHandler(svc *application.ExportService, logger *logrus.Logger) *ExportHandler {
	return &ExportHandler{Svc: svc, Logger: logger}
}

type exportRequest struct {
	Format string `json:"format" binding:"required,exportformat"`
	rangeQuery
}

// Export streams the rendered file as an attachment, not the JSON envelope.
func (h *ExportHandler) Export(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	res, err := h.Svc.Export(c.Request.Context(), c.GetString("userID"), req.request(), req.Format)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+res.Filename)
	c.Header("Content-Length", strconv.Itoa(len(res.Body)))
	c.Data(http.StatusOK, res.ContentType, res.Body)
}
