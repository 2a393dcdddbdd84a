package http

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/GoSim-25-26J-441/image-studio-backend/internal/artifacts/domain"
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/artifacts/service"
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validationOnce sync.Once

// registerValidation makes validator report json names ("imageDataUrl") or
// header names instead of Go field names, and adds the session_id tag.
func registerValidation() {
	validationOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if h := fld.Tag.Get("header"); h != "" {
				return h
			}
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		if err := v.RegisterValidation("session_id", validSessionID); err != nil {
			panic(err)
		}
	})
}

// validSessionID accepts letters, digits, '_' and '-'. Session ids end up in
// Redis keys and snapshot file names.
func validSessionID(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

// bindError answers a failed bind with 400 and per-field detail.
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters long", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters long", fe.Param())
	case "session_id":
		return "may only contain letters, digits, '_' and '-'"
	case "startswith":
		return fmt.Sprintf("must start with %q", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	}
	return "is invalid"
}

// writeError maps service errors to status codes
func writeError(c *gin.Context, operation string, err error) {
	status, msg := http.StatusInternalServerError, "internal error"

	if fields := invalidFields(err); fields != nil {
		logger.NewLogger(c.Request.Context()).LogInfof(operation, "rejected with %d: %v", http.StatusBadRequest, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidAction),
		errors.Is(err, domain.ErrInvalidSource),
		errors.Is(err, domain.ErrEmptyUpdate):
		status, msg = http.StatusBadRequest, rootMessage(err)
	case errors.Is(err, domain.ErrRequestInFlight),
		errors.Is(err, domain.ErrArtifactExists),
		errors.Is(err, domain.ErrUpdateConflict):
		status, msg = http.StatusConflict, rootMessage(err)
	case errors.Is(err, domain.ErrArtifactNotFound),
		errors.Is(err, domain.ErrParentNotLoaded),
		errors.Is(err, domain.ErrNoParent),
		errors.Is(err, domain.ErrJobNotFound):
		status, msg = http.StatusNotFound, rootMessage(err)
	case errors.Is(err, domain.ErrJobsDisabled):
		status, msg = http.StatusNotImplemented, rootMessage(err)
	case errors.Is(err, domain.ErrUpstream):
		msg = domain.ErrUpstream.Error()
	}

	log := logger.NewLogger(c.Request.Context())
	if status >= http.StatusInternalServerError {
		log.LogError(operation, err)
	} else {
		log.LogInfof(operation, "rejected with %d: %v", status, err)
	}
	c.JSON(status, gin.H{"error": msg})
}

// invalidFields reports service-side request validation failures per field,
// in the same shape bindError uses.
func invalidFields(err error) map[string]string {
	switch {
	case errors.Is(err, domain.ErrInvalidPrompt):
		return map[string]string{"prompt": fmt.Sprintf("must be at least %d characters long", service.MinPromptLength)}
	case errors.Is(err, domain.ErrInvalidImage):
		return map[string]string{"imageDataUrl": "must be a base64 image data url"}
	}
	return nil
}

// rootMessage is the sentinel text without wrapped detail
func rootMessage(err error) string {
	for _, sentinel := range []error{
		domain.ErrInvalidPrompt, domain.ErrInvalidImage, domain.ErrInvalidAction,
		domain.ErrInvalidSource, domain.ErrEmptyUpdate, domain.ErrRequestInFlight,
		domain.ErrArtifactExists, domain.ErrArtifactNotFound, domain.ErrParentNotLoaded,
		domain.ErrNoParent, domain.ErrJobNotFound, domain.ErrJobsDisabled, domain.ErrUpdateConflict,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
