package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/narrative-weaver/internal/domain/errs"
	"github.com/oksasatya/narrative-weaver/pkg/response"
	"github.com/oksasatya/narrative-weaver/pkg/validation"
)

const (
	msgServerError    = "Server error"
	msgExternalFailed = "The request could not be completed, please try again later."
	msgNotAuthorized  = "Not authorized"
)

// writeError maps an error kind to its status. Causes are logged, never sent.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	status, msg := http.StatusInternalServerError, msgServerError
	switch {
	case errors.Is(err, errs.ErrValidation):
		status, msg = http.StatusBadRequest, errs.Message(err)
	case errors.Is(err, errs.ErrUnauthenticated):
		status, msg = http.StatusUnauthorized, errs.Message(err)
	case errors.Is(err, errs.ErrForbidden):
		status, msg = http.StatusUnauthorized, msgNotAuthorized
	case errors.Is(err, errs.ErrNotFound):
		status, msg = http.StatusNotFound, errs.Message(err)
	case errors.Is(err, errs.ErrExternal):
		if msg = errs.Message(err); msg == "" {
			msg = msgExternalFailed
		}
	}

	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"route":      c.FullPath(),
				"user_id":    c.GetString("userID"),
			}).Error("request failed")
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	response.Error[any](c, status, msg, nil)
}

// bindError answers a malformed body or query with per-field details.
func bindError(c *gin.Context, err error) {
	details := validation.ToDetails(err)
	response.Error[any](c, http.StatusBadRequest, "invalid payload: "+validation.Summary(details), details)
}
