package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/narrative-weaver/internal/application"
	"github.com/oksasatya/narrative-weaver/internal/domain/entity"
	"github.com/oksasatya/narrative-weaver/pkg/response"
)

const maxImageBytes = 5 << 20

type DiaryHandler struct {
	Svc    *application.DiaryService
	Logger *logrus.Logger
}

func NewDiaryHandler(svc *application.DiaryService, logger *logrus.Logger) *DiaryHandler {
	return &DiaryHandler{Svc: svc, Logger: logger}
}

type createEntryRequest struct {
	Text    string `json:"text"`
	Feeling string `json:"feeling" binding:"omitempty,max=64"`
	Image   string `json:"image" binding:"omitempty,url"`
}

type updateEntryRequest struct {
	Text    *string `json:"text"`
	Feeling *string `json:"feeling" binding:"omitempty,max=64"`
	Image   *string `json:"image" binding:"omitempty,url"`
}

type searchQuery struct {
	Q     string `form:"q"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

func entryPayload(e *entity.DiaryEntry) gin.H {
	return gin.H{
		"id":        e.ID,
		"user":      e.OwnerID,
		"text":      e.Text,
		"image":     e.Image,
		"feeling":   e.Feeling,
		"createdAt": e.CreatedAt,
		"updatedAt": e.UpdatedAt,
	}
}

func entriesPayload(list []*entity.DiaryEntry) []gin.H {
	out := make([]gin.H, 0, len(list))
	for _, e := range list {
		out = append(out, entryPayload(e))
	}
	return out
}

func (h *DiaryHandler) List(c *gin.Context) {
	list, err := h.Svc.List(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, entriesPayload(list), "entries", map[string]any{"count": len(list)})
}

func (h *DiaryHandler) Create(c *gin.Context) {
	var req createEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	e, err := h.Svc.Create(c.Request.Context(), c.GetString("userID"), application.CreateEntryInput{
		Text: req.Text, Feeling: req.Feeling, Image: req.Image,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, entryPayload(e), "entry created", nil)
}

func (h *DiaryHandler) Update(c *gin.Context) {
	var req updateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	e, err := h.Svc.Update(c.Request.Context(), c.GetString("userID"), c.Param("id"), application.UpdateEntryInput{
		Text: req.Text, Feeling: req.Feeling, Image: req.Image,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, entryPayload(e), "entry updated", nil)
}

func (h *DiaryHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": c.Param("id")}, "Entry removed", nil)
}

func (h *DiaryHandler) Search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	list, err := h.Svc.Search(c.Request.Context(), c.GetString("userID"), q.Q, q.Limit)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, entriesPayload(list), "search results", map[string]any{"count": len(list), "q": q.Q})
}

func (h *DiaryHandler) UploadImage(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "image file is required", nil)
		return
	}
	if fh.Size > maxImageBytes {
		response.Error[any](c, http.StatusBadRequest, "image must be at most 5MB", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	defer func() { _ = f.Close() }()

	url, err := h.Svc.UploadImage(c.Request.Context(), c.GetString("userID"), fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"url": url}, "image uploaded", nil)
}
