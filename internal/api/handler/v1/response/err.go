package response

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GenericLegacyErr is returned by the legacy routes when something other
// than the input is wrong.
const GenericLegacyErr = "Error al procesar la solicitud"

type Err struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	StatusText string `json:"status_text"`
	ErrorText  string `json:"error_text,omitempty"`
}

func (e *Err) Error() string {
	return e.ErrorText
}

func RenderErr(ctx *gin.Context, e *Err) {
	if e.HTTPStatusCode >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("request_id", requestid.Get(ctx)),
			zap.String("path", ctx.FullPath()),
			zap.Error(e.Err))
	}

	ctx.AbortWithStatusJSON(e.HTTPStatusCode, e)
}

func ErrBadRequest(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Bad request.",
		ErrorText:      err.Error(),
	}
}

func ErrUnauthorized(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusUnauthorized,
		StatusText:     "Unauthorized.",
		ErrorText:      err.Error(),
	}
}

func ErrWrongCredentials(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusUnauthorized,
		StatusText:     "Wrong credentials.",
		ErrorText:      "email/username or password is incorrect",
	}
}

func ErrPermissionDenied(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusForbidden,
		StatusText:     "Permission denied.",
		ErrorText:      err.Error(),
	}
}

func ErrNotFound(resource, field string, value any) *Err {
	return &Err{
		Err:            fmt.Errorf("%s not found", resource),
		HTTPStatusCode: http.StatusNotFound,
		StatusText:     "Resource not found.",
		ErrorText:      fmt.Sprintf("%s with %s %v not found", resource, field, value),
	}
}

func ErrConflict(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusConflict,
		StatusText:     "Conflict.",
		ErrorText:      err.Error(),
	}
}

// ErrInternalServerError hides err from the client; it is only logged.
func ErrInternalServerError(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     "Internal server error.",
	}
}

// Legacy is the {success, error} envelope of the /api/sales, /api/credits
// and /api/whatsapp routes.
type Legacy struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func RenderLegacyErr(ctx *gin.Context, status int, msg string) {
	ctx.AbortWithStatusJSON(status, Legacy{Success: false, Error: msg})
}

// RenderLegacyInternalErr logs err and answers 500 with the generic message.
func RenderLegacyInternalErr(ctx *gin.Context, err error) {
	zap.L().Error("legacy request failed",
		zap.String("request_id", requestid.Get(ctx)),
		zap.String("path", ctx.FullPath()),
		zap.Error(err))

	RenderLegacyErr(ctx, http.StatusInternalServerError, GenericLegacyErr)
}
