package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ipcctiled/transform-api/internal/logger"
	"github.com/ipcctiled/transform-api/internal/models"
	"github.com/ipcctiled/transform-api/internal/profile"
	"github.com/ipcctiled/transform-api/internal/transform"
)

// TransformPath is the transform endpoint; a profile name may follow it
const TransformPath = "/api/transform"

// Largest request body accepted by the transform endpoint
const maxBodyBytes = 64 << 10

// Messages for 5xx responses. Provider details stay in the logs.
const (
	msgEmptyCompletion = "No response from model"
	msgMalformedOutput = "Invalid model response format"
	msgTransformFailed = "Transformation failed"
	msgInternal        = "Internal server error"
)

type TransformHandler struct {
	service        *transform.Service
	profiles       map[profile.Name]profile.Profile
	defaultProfile profile.Name
}

func NewTransformHandler(
	service *transform.Service,
	profiles map[profile.Name]profile.Profile,
	defaultProfile profile.Name,
) *TransformHandler {
	return &TransformHandler{
		service:        service,
		profiles:       profiles,
		defaultProfile: defaultProfile,
	}
}

// Transform handles POST /api/transform and POST /api/transform/:profile
func (h *TransformHandler) Transform(c *gin.Context) {
	name := profile.Name(c.Param("profile"))
	if name == "" {
		name = h.defaultProfile
	}
	p, ok := h.profiles[name]
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Unknown response profile: " + string(name)})
		return
	}
	c.Set("profile", string(name))

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, &transform.ValidationError{
				Kind:    transform.KindBodyTooLarge,
				Message: fmt.Sprintf("Request body exceeds %d KiB", maxBodyBytes>>10),
			})
			return
		}
		writeError(c, &transform.ValidationError{Kind: transform.KindInvalidBody, Message: "Request body must be a JSON object"})
		return
	}

	req, err := transform.DecodeRequest(body)
	if err != nil {
		writeError(c, err)
		return
	}

	resp, err := h.service.Transform(c.Request.Context(), req, p)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// MethodNotAllowed rejects any verb other than POST
func MethodNotAllowed(c *gin.Context) {
	writeError(c, &transform.MethodNotAllowedError{Method: c.Request.Method})
}

// NoMethod answers a known path requested with a verb it does not serve
func NoMethod(c *gin.Context) {
	path := c.Request.URL.Path
	if path == TransformPath || strings.HasPrefix(path, TransformPath+"/") {
		MethodNotAllowed(c)
		return
	}
	c.JSON(http.StatusMethodNotAllowed, models.ErrorResponse{Error: "Method not allowed"})
}

// NotFound answers unknown paths
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Not found"})
}

// writeError maps the transform error taxonomy to a status code and body
func writeError(c *gin.Context, err error) {
	fields := logger.WithContext(c)
	fields["error_kind"] = transform.ErrorKind(err)
	if stage, ok := transform.FailedAt(err); ok {
		fields["stage"] = string(stage)
	}

	var (
		verr *transform.ValidationError
		merr *transform.MethodNotAllowedError
		perr *transform.ProviderError
	)
	switch {
	case errors.As(err, &verr):
		fields["field"] = verr.Field
		logger.Warn("Rejected transform request", fields)
		status := http.StatusBadRequest
		if verr.Kind == transform.KindBodyTooLarge {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, models.ErrorResponse{Error: verr.Message, Kind: string(verr.Kind)})
	case errors.As(err, &merr):
		c.JSON(http.StatusMethodNotAllowed, models.ErrorResponse{Error: merr.Error()})
	case errors.As(err, &perr):
		msg := msgTransformFailed
		if perr.Empty() {
			msg = msgEmptyCompletion
		}
		c.JSON(http.StatusInternalServerError, models.FailureResponse{Success: false, Message: msg})
	case transform.IsMalformedOutput(err):
		c.JSON(http.StatusInternalServerError, models.FailureResponse{Success: false, Message: msgMalformedOutput})
	default:
		logger.Error("Transform failed", err, fields)
		c.JSON(http.StatusInternalServerError, models.FailureResponse{Success: false, Message: msgInternal})
	}
}
