package handlers

import (
  "errors"
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/yungbote/chatgraph-backend/internal/apierr"
)

type APIError struct {
  Message     string	`json:"message"`
  Code	      string	`json:"code,omitempty"`
}

type ErrorEnvelope struct {
  Error	      APIError	`json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
  msg := "unknown error"
  if err != nil {
    msg = err.Error()
  }
  c.JSON(status, ErrorEnvelope{
    Error: APIError{
      Message: msg,
      Code:    code,
    },
  })
}

// RespondServiceError maps the service sentinels onto HTTP statuses.
// Anything unrecognized is a 500 under fallbackCode.
func RespondServiceError(c *gin.Context, fallbackCode string, err error) {
  var apiErr *apierr.Error
  switch {
  case errors.As(err, &apiErr):
    RespondError(c, apiErr.Status, apiErr.Code, apiErr.Err)
  case errors.Is(err, apierr.ErrNotFound):
    RespondError(c, http.StatusNotFound, "not_found", err)
  case errors.Is(err, apierr.ErrUnauthorized):
    RespondError(c, http.StatusUnauthorized, "unauthorized", err)
  case errors.Is(err, apierr.ErrInvalidArgument):
    RespondError(c, http.StatusBadRequest, "invalid_argument", err)
  default:
    RespondError(c, http.StatusInternalServerError, fallbackCode, err)
  }
}

func RespondOK(c *gin.Context, payload any) {
  c.JSON(http.StatusOK, payload)
}
