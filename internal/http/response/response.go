package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pension-pipeline/internal/domain/stageerr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
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

// RespondStageError picks the HTTP status from the error's stage code.
func RespondStageError(c *gin.Context, err error) {
	code := stageerr.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case stageerr.CodeValidation:
		status = http.StatusBadRequest
	case stageerr.CodeNotFound:
		status = http.StatusNotFound
	case stageerr.CodeConflict:
		status = http.StatusConflict
	case stageerr.CodeInputUnavailable:
		status = http.StatusServiceUnavailable
	}
	if code == "" {
		code = stageerr.CodeInternal
	}
	var se *stageerr.Error
	if errors.As(err, &se) && se.Message != "" {
		err = errors.New(se.Message)
	}
	RespondError(c, status, string(code), err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondAccepted(c *gin.Context, payload any) {
	c.JSON(http.StatusAccepted, payload)
}
