package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"projecttracker/internal/apperr"
	"projecttracker/internal/model"
	"projecttracker/pkg/logger"
	"projecttracker/pkg/metrics"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Timestamp        time.Time         `json:"timestamp"`
	Status           int               `json:"status"`
	Error            string            `json:"error"`
	Message          string            `json:"message"`
	Path             string            `json:"path"`
	ValidationErrors map[string]string `json:"validation_errors,omitempty"`
}

// UseJSONFieldNames makes validator report fields by their json name.
func UseJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
}

// writeError is the single translation point from errors to HTTP.
func writeError(c *gin.Context, log *zap.Logger, err error) {
	log = logger.WithTrace(c.Request.Context(), log)

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.Unexpected(err, "unexpected error")
	}

	message := appErr.Message
	switch {
	case appErr.Code == apperr.CodeUnexpected:
		log.Error("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		message = "an unexpected error occurred"
	case appErr.Code.IsBusinessRule():
		metrics.IncrementRuleViolation(string(appErr.Code))
		log.Info("Request rejected by business rule",
			zap.String("code", string(appErr.Code)),
			zap.String("message", appErr.Message),
		)
	default:
		log.Debug("Request rejected",
			zap.String("code", string(appErr.Code)),
			zap.String("message", appErr.Message),
		)
	}

	status := appErr.Code.HTTPStatus()
	c.AbortWithStatusJSON(status, ErrorResponse{
		Timestamp:        time.Now().UTC(),
		Status:           status,
		Error:            appErr.Code.Title(),
		Message:          message,
		Path:             c.Request.URL.Path,
		ValidationErrors: appErr.Fields,
	})
}

// bindError turns a gin binding failure into a validation error.
func bindError(err error) error {
	var (
		fieldErrs validator.ValidationErrors
		enumErr   *model.InvalidEnumError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &fieldErrs):
		fields := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields[fe.Field()] = fieldMessage(fe)
		}
		return apperr.Validation("request validation failed", fields)
	case errors.As(err, &enumErr):
		return apperr.Validation("request validation failed", map[string]string{
			enumErr.Kind: enumErr.Error(),
		})
	case errors.As(err, &typeErr):
		return apperr.Validation("request validation failed", map[string]string{
			typeErr.Field: fmt.Sprintf("must be a %s", typeErr.Type),
		})
	default:
		return apperr.Validation("malformed request body: "+err.Error(), nil)
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed the %s check", fe.Field(), fe.Tag())
	}
}

// NoRoute answers unknown paths with the regular error envelope.
func NoRoute(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		writeError(c, log, apperr.NotFound("no route for %s %s", c.Request.Method, c.Request.URL.Path))
	}
}
