package httptransport

import (
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"agrosnap-server/internal/platform/config"
	"agrosnap-server/internal/platform/errors"
)

const PayloadTooLargeMessage = "request entity too large"

// ErrorResponse is the body of every failed API call. Kind is only set in
// detailed error mode.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// StatusFor maps an error kind onto the HTTP status for the given error mode.
func StatusFor(mode string, kind errors.Kind) int {
	if kind == errors.KindPayloadTooLarge {
		return http.StatusRequestEntityTooLarge
	}
	if mode != config.ErrorModeDetailed {
		return http.StatusInternalServerError
	}
	switch kind {
	case errors.KindInvalidInput:
		return http.StatusBadRequest
	case errors.KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case errors.KindUpstreamRejected, errors.KindUpstreamMalformed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RespondFailure writes the fixed failure message for err. Upstream detail
// stays in the logs and never reaches the client.
func RespondFailure(c *gin.Context, mode, message string, err error) {
	kind := errors.KindOf(err)
	status := StatusFor(mode, kind)

	resp := ErrorResponse{Error: message}
	if kind == errors.KindPayloadTooLarge {
		resp.Error = PayloadTooLargeMessage
	}
	if mode == config.ErrorModeDetailed {
		resp.Kind = string(kind)
	}

	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, resp)
}

// BindError classifies a body decoding failure. An empty body decodes to
// io.EOF and is left to field validation, so nil is returned for it.
func BindError(op string, err error) error {
	if err == nil || stderrors.Is(err, io.EOF) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return errors.Wrap(errors.KindPayloadTooLarge, op, "request body exceeds limit", err)
	}
	return errors.Wrap(errors.KindInvalidInput, op, "request body could not be decoded", err)
}
