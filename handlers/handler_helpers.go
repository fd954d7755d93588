package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"spark-feed/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Response Helpers
// =============================================================================

// respondWithError sends a standardized error response
func respondWithError(c *gin.Context, code int, error, message string) {
	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   error,
		Message: message,
		Code:    code,
	})
}

// respondBadRequest sends a 400 error response
func respondBadRequest(c *gin.Context, message string) {
	respondWithError(c, http.StatusBadRequest, "Invalid request", message)
}

// respondUnauthorized sends a 401 error response
func respondUnauthorized(c *gin.Context, message string) {
	respondWithError(c, http.StatusUnauthorized, "Unauthorized", message)
}

// respondNotFound sends a 404 error response
func respondNotFound(c *gin.Context, message string) {
	respondWithError(c, http.StatusNotFound, "Not found", message)
}

// respondInternalError sends a 500 error response. Details stay in the log.
func respondInternalError(c *gin.Context) {
	respondWithError(c, http.StatusInternalServerError, "Internal error", "The request could not be completed")
}

// respondValidationError sends a 400 with one message per invalid field when
// err comes from binding, and the plain error text otherwise
func respondValidationError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		respondBadRequest(c, err.Error())
		return
	}

	fields := make(map[string]string, len(verrs))
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := lowerFirst(fe.Field())
		fields[name] = fieldMessage(fe)
		names = append(names, name)
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "Invalid request",
		Message: "invalid parameters: " + strings.Join(names, ", "),
		Code:    http.StatusBadRequest,
		Fields:  fields,
	})
}

// fieldMessage renders a single validation failure for API clients
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "latitude":
		return "must be a latitude between -90 and 90"
	case "longitude":
		return "must be a longitude between -180 and 180"
	case "datetime":
		return "must be a date formatted as YYYY-MM-DD"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// =============================================================================
// Query Echo Helpers
// =============================================================================

// feedFilters echoes the effective feed query in response metadata
func feedFilters(q models.FeedQuery) map[string]string {
	filters := map[string]string{
		"contentType":  string(q.ContentType),
		"sortBy":       string(q.SortBy),
		"hoursAgo":     strconv.Itoa(q.HoursAgo),
		"radiusMeters": strconv.FormatFloat(q.RadiusMeters, 'f', -1, 64),
	}
	if len(q.Tags) > 0 {
		filters["tags"] = strings.Join(q.Tags, ",")
	}
	if q.ReferenceLocation != nil {
		filters["lat"] = fmt.Sprintf("%.4f", q.ReferenceLocation.Lat)
		filters["lon"] = fmt.Sprintf("%.4f", q.ReferenceLocation.Lon)
	}
	return filters
}

// splitTags parses a comma separated tag list, dropping blanks and duplicates
func splitTags(raw string) []string {
	seen := map[string]bool{}
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t != "" && !seen[t] {
			seen[t] = true
			tags = append(tags, t)
		}
	}
	return tags
}
