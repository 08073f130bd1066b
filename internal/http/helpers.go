package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/hymnal/internal/apperr"
)

// MaxPageLimit caps the limit query parameter on every list endpoint.
const MaxPageLimit = 1000

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    apperr.Kind       `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// MessageResponse acknowledges an operation that has nothing else to return.
type MessageResponse struct {
	Message string `json:"message"`
}

var registerTagNames sync.Once

// useJSONFieldNames makes validator report fields by their json name, so
// binding errors and service validation errors share one vocabulary.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
	})
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusUnprocessableEntity
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindAuthentication:
		return http.StatusUnauthorized
	case apperr.KindAuthorization:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as an ErrorResponse. Internal errors are logged
// and never exposed to the client.
func respondError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.Internal("internal server error", err)
	}

	status := statusFor(appErr.Kind)
	if status == http.StatusInternalServerError {
		log.Error("Request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "err", err)
		c.JSON(status, ErrorResponse{Error: "internal server error", Code: apperr.KindInternal})
		return
	}
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.JSON(status, ErrorResponse{Error: appErr.Message, Code: appErr.Kind, Details: appErr.Fields})
}

// respondBindError reports a failed ShouldBind call. Constraint violations
// are validation errors; anything the decoder could not read is a 400.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fieldPath(fe)] = describeConstraint(fe)
		}
		respondError(c, apperr.Validation("invalid request body", fields))
		return
	}

	message := "invalid request body"
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		message = "request body is empty"
	case errors.As(err, &syntaxErr):
		message = fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset)
	case errors.As(err, &typeErr):
		if typeErr.Field != "" {
			message = fmt.Sprintf("invalid type for field %s", typeErr.Field)
		}
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: apperr.KindValidation})
}

// fieldPath drops the top-level struct name from a validator namespace:
// "CreateHymnInput.verses[0].text" becomes "verses[0].text".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describeConstraint(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must contain at least " + fe.Param() + " items"
		}
		return "must be at least " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// bindJSON decodes the body into obj and writes the error response on
// failure.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
// Returns the parsed ID or responds with a 422 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
	if err != nil || id == 0 {
		respondError(c, apperr.ValidationField(paramName, "must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}

// parseIntQuery reads an optional integer query parameter.
func parseIntQuery(c *gin.Context, name string) (*int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		respondError(c, apperr.ValidationField(name, "must be an integer"))
		return nil, false
	}
	return &v, true
}

// parsePagination reads skip and limit. A missing limit becomes
// defaultLimit; zero is passed through so services apply their own default.
func parsePagination(c *gin.Context, defaultLimit int) (skip, limit int, ok bool) {
	skipPtr, ok := parseIntQuery(c, "skip")
	if !ok {
		return 0, 0, false
	}
	limitPtr, ok := parseIntQuery(c, "limit")
	if !ok {
		return 0, 0, false
	}

	limit = defaultLimit
	if skipPtr != nil {
		skip = *skipPtr
	}
	if limitPtr != nil {
		limit = *limitPtr
	}

	fields := map[string]string{}
	if skip < 0 {
		fields["skip"] = "must be greater than or equal to 0"
	}
	if limit < 0 || limit > MaxPageLimit {
		fields["limit"] = fmt.Sprintf("must be between 1 and %d", MaxPageLimit)
	}
	if len(fields) > 0 {
		respondError(c, apperr.Validation("invalid pagination", fields))
		return 0, 0, false
	}
	return skip, limit, true
}

// readUpload reads the multipart "file" field up to maxBytes. The declared
// content type is trusted unless it is missing or generic, in which case the
// bytes are sniffed.
func readUpload(c *gin.Context, maxBytes int64) ([]byte, string, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondError(c, apperr.ValidationField("file", "file not provided"))
		return nil, "", false
	}
	defer file.Close()

	if maxBytes > 0 && header.Size > maxBytes {
		respondError(c, apperr.ValidationField("file", fmt.Sprintf("file too large (max %d bytes)", maxBytes)))
		return nil, "", false
	}

	reader := io.Reader(file)
	if maxBytes > 0 {
		reader = io.LimitReader(file, maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		respondError(c, apperr.Internal("failed to read upload", err))
		return nil, "", false
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		respondError(c, apperr.ValidationField("file", fmt.Sprintf("file too large (max %d bytes)", maxBytes)))
		return nil, "", false
	}

	contentType := strings.TrimSpace(strings.SplitN(header.Header.Get("Content-Type"), ";", 2)[0])
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, true
}
