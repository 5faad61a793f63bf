package models

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Problem is an RFC 7807 error body, served as application/problem+json.
type Problem struct {
	// Type is a URI reference that identifies the problem type.
	Type string `json:"type"`

	// Title is a short, human-readable summary of the problem type.
	Title string `json:"title"`

	// Status is the HTTP status code for this occurrence of the problem.
	Status int `json:"status"`

	// Detail is a human-readable explanation specific to this occurrence.
	Detail string `json:"detail,omitempty"`

	// Instance is a URI reference that identifies the specific occurrence.
	Instance string `json:"instance,omitempty"`

	// TraceID is the request trace identifier for debugging.
	TraceID string `json:"traceId"`

	// Errors contains structured field validation errors.
	Errors []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

const problemBase = "https://nimbus.dev/problems/"

// Problem type URIs.
const (
	ProblemTypeValidation      = problemBase + "validation-error"
	ProblemTypeUnauthorized    = problemBase + "unauthorized"
	ProblemTypeForbidden       = problemBase + "forbidden"
	ProblemTypeNotFound        = problemBase + "not-found"
	ProblemTypeConflict        = problemBase + "conflict"
	ProblemTypeInvalidLocation = problemBase + "invalid-location"
	ProblemTypeTooManyRequests = problemBase + "too-many-requests"
	ProblemTypeInternal        = problemBase + "internal-error"
	ProblemTypeUnavailable     = problemBase + "service-unavailable"
	ProblemTypeUnsupportedType = problemBase + "unsupported-media-type"
	ProblemTypeTLSRequired     = problemBase + "tls-required"

	// Upstream weather source failures.
	ProblemTypeSourceAuth        = problemBase + "source-unauthorized"
	ProblemTypeSourceInvalidData = problemBase + "source-invalid-data"
	ProblemTypeSourceRateLimited = problemBase + "source-rate-limited"
	ProblemTypeSourceFailed      = problemBase + "source-failed"
)

// statusProblems holds the default type and title per status code.
var statusProblems = map[int][2]string{
	http.StatusBadRequest:           {ProblemTypeValidation, "Validation error"},
	http.StatusUnauthorized:         {ProblemTypeUnauthorized, "Unauthorized"},
	http.StatusForbidden:            {ProblemTypeForbidden, "Forbidden"},
	http.StatusNotFound:             {ProblemTypeNotFound, "Not found"},
	http.StatusConflict:             {ProblemTypeConflict, "Conflict"},
	http.StatusUnsupportedMediaType: {ProblemTypeUnsupportedType, "Unsupported media type"},
	http.StatusUnprocessableEntity:  {ProblemTypeInvalidLocation, "Invalid location"},
	http.StatusTooManyRequests:      {ProblemTypeTooManyRequests, "Too many requests"},
	http.StatusInternalServerError:  {ProblemTypeInternal, "Internal server error"},
	http.StatusServiceUnavailable:   {ProblemTypeUnavailable, "Service unavailable"},
}

// NewProblem creates a new Problem with the given parameters.
func NewProblem(problemType, title string, status int, traceID string) *Problem {
	return &Problem{
		Type:    problemType,
		Title:   title,
		Status:  status,
		TraceID: traceID,
	}
}

// ForStatus creates a problem with the default type and title for status.
// Unknown statuses fall back to about:blank and the HTTP status text.
func ForStatus(status int, traceID, detail string) *Problem {
	kind, ok := statusProblems[status]
	if !ok {
		kind = [2]string{"about:blank", http.StatusText(status)}
	}
	return NewProblem(kind[0], kind[1], status, traceID).WithDetail(detail)
}

// WithDetail adds a detail message to the Problem.
func (p *Problem) WithDetail(detail string) *Problem {
	p.Detail = detail
	return p
}

// WithInstance adds the request instance URI to the Problem.
func (p *Problem) WithInstance(instance string) *Problem {
	p.Instance = instance
	return p
}

// WithErrors adds field errors to the Problem.
func (p *Problem) WithErrors(errors []FieldError) *Problem {
	p.Errors = errors
	return p
}

// Error lets a Problem travel as an error value.
func (p *Problem) Error() string {
	if p.Detail == "" {
		return fmt.Sprintf("%d %s", p.Status, p.Title)
	}
	return fmt.Sprintf("%d %s: %s", p.Status, p.Title, p.Detail)
}

// Write writes the Problem as JSON to the ResponseWriter.
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	if p.TraceID != "" {
		w.Header().Set("X-Request-Id", p.TraceID)
	}
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

func NewBadRequest(traceID, detail string, errors []FieldError) *Problem {
	return ForStatus(http.StatusBadRequest, traceID, detail).WithErrors(errors)
}

func NewUnauthorized(traceID, detail string) *Problem {
	return ForStatus(http.StatusUnauthorized, traceID, detail)
}

func NewForbidden(traceID, detail string) *Problem {
	return ForStatus(http.StatusForbidden, traceID, detail)
}

func NewNotFound(traceID, detail string) *Problem {
	return ForStatus(http.StatusNotFound, traceID, detail)
}

func NewConflict(traceID, detail string) *Problem {
	return ForStatus(http.StatusConflict, traceID, detail)
}

func NewUnsupportedMediaType(traceID, detail string) *Problem {
	return ForStatus(http.StatusUnsupportedMediaType, traceID, detail)
}

// NewUnprocessable reports a location the sources cannot resolve.
func NewUnprocessable(traceID, detail string) *Problem {
	return ForStatus(http.StatusUnprocessableEntity, traceID, detail)
}

func NewTooManyRequests(traceID, detail string) *Problem {
	return ForStatus(http.StatusTooManyRequests, traceID, detail)
}

func NewInternalError(traceID, detail string) *Problem {
	return ForStatus(http.StatusInternalServerError, traceID, detail)
}

func NewServiceUnavailable(traceID, detail string) *Problem {
	return ForStatus(http.StatusServiceUnavailable, traceID, detail)
}

// NewBadGateway reports an upstream weather source failure. The type
// distinguishes the failure class.
func NewBadGateway(problemType, title, traceID, detail string) *Problem {
	return NewProblem(problemType, title, http.StatusBadGateway, traceID).WithDetail(detail)
}
