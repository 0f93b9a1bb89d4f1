package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/KOFI-GYIMAH/github-client/pkg/logger"
)

type ErrorLevel int

const (
	LevelFatal ErrorLevel = iota + 1
	LevelError
	LevelWarning
	LevelInfo
)

func (l ErrorLevel) String() string {
	return [...]string{"", "Fatal", "Error", "Warning", "Info"}[l]
}

// Kind tells callers which side of the wire a failure came from.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindRemote
)

func (k Kind) String() string {
	return [...]string{"internal", "validation", "remote"}[k]
}

const (
	RefValidation = "VALIDATION_ERROR"
	RefRemote     = "GITHUB_API_ERROR"
	RefTransport  = "GITHUB_TRANSPORT_ERROR"
)

type ApplicationError struct {
	Reference   string
	Title       string
	Detail      string
	RootCause   error
	Level       ErrorLevel
	Kind        Kind
	StatusCode  int
	Body        []byte
	OccurredAt  time.Time
	CallerTrace []string
}

func (e *ApplicationError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s][%s] %s", e.OccurredAt.Format(time.RFC3339), e.Reference, e.Title)

	if e.Detail != "" {
		fmt.Fprintf(&b, " - %s", e.Detail)
	}

	if e.RootCause != nil {
		fmt.Fprintf(&b, " (caused by: %v)", e.RootCause)
	}

	return b.String()
}

func (e *ApplicationError) Unwrap() error {
	return e.RootCause
}

func New(ref, title, detail string, cause error, level ErrorLevel) *ApplicationError {
	return &ApplicationError{
		Reference:   ref,
		Title:       title,
		Detail:      detail,
		RootCause:   cause,
		Level:       level,
		OccurredAt:  time.Now().UTC(),
		CallerTrace: captureCallerInfo(3),
	}
}

// Validation reports a bad argument caught before any request was issued.
// The message is used verbatim as the title.
func Validation(msg string) *ApplicationError {
	e := New(RefValidation, msg, "", nil, LevelWarning)
	e.Kind = KindValidation
	e.CallerTrace = captureCallerInfo(3)
	return e
}

// Remote reports a failed round trip. A zero status means the request never
// produced a response (dial, TLS, timeout, cancelled context).
func Remote(title, detail string, status int, body []byte, cause error) *ApplicationError {
	ref := RefRemote
	if status == 0 {
		ref = RefTransport
	}

	e := New(ref, title, detail, cause, LevelError)
	e.Kind = KindRemote
	e.StatusCode = status
	e.Body = body
	e.CallerTrace = captureCallerInfo(3)
	return e
}

// KindOf returns KindInternal for anything that is not an ApplicationError.
func KindOf(err error) Kind {
	var appErr *ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsValidation(err error) bool {
	return err != nil && KindOf(err) == KindValidation
}

func IsRemote(err error) bool {
	return err != nil && KindOf(err) == KindRemote
}

func captureCallerInfo(skip int) []string {
	pc := make([]uintptr, 10)
	n := runtime.Callers(skip, pc)
	if n == 0 {
		return nil
	}

	pc = pc[:n]
	frames := runtime.CallersFrames(pc)

	var trace []string
	for {
		frame, more := frames.Next()
		trace = append(trace, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		if !more {
			break
		}
	}

	return trace
}

type HTTPErrorResponse struct {
	Status     int       `json:"status"`
	ErrorRef   string    `json:"error_reference,omitempty"`
	Kind       string    `json:"kind,omitempty"`
	Title      string    `json:"title"`
	Detail     string    `json:"detail,omitempty"`
	Resolution string    `json:"resolution,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// StatusFor maps an error onto the status code a facade should answer with.
func StatusFor(err error) int {
	var appErr *ApplicationError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}

	switch appErr.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindRemote:
		if appErr.StatusCode == 0 {
			return http.StatusBadGateway
		}
		return appErr.StatusCode
	}

	return http.StatusInternalServerError
}

func WriteHTTPError(w http.ResponseWriter, err error) {
	var appErr *ApplicationError

	resp := HTTPErrorResponse{
		Status:    StatusFor(err),
		Title:     "An unexpected error occurred",
		Timestamp: time.Now().UTC(),
	}

	if errors.As(err, &appErr) {
		resp.ErrorRef = appErr.Reference
		resp.Kind = appErr.Kind.String()
		resp.Title = appErr.Title
		resp.Detail = appErr.Detail

		switch appErr.Kind {
		case KindValidation:
			resp.Resolution = "Please review your request and try again"
		case KindInternal:
			resp.Resolution = "Please contact support with the error reference"
		}
	} else {
		resp.Detail = err.Error()
	}

	// * Validation and remote failures were already logged where they happened.
	if KindOf(err) == KindInternal {
		logger.Error("%v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	json.NewEncoder(w).Encode(resp)
}
