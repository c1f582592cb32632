package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flowscribe/flowscribe/internal/editor"
	"github.com/flowscribe/flowscribe/internal/patch"
)

// Failure kinds outside the edit taxonomy.
const (
	kindBadRequest = "BAD_REQUEST"
	kindNotFound   = "NOT_FOUND"
	kindStore      = "STORE_ERROR"
)

// errorBody is every failure response: {"error": {"kind", "message", ...}}.
type errorBody struct {
	Error errorDetail `json:"error"`
}

// errorDetail mirrors the edit error taxonomy. Ref and Path come from the
// failing edit; Step is set for rejected batches.
type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Ref     string `json:"ref,omitempty"`
	Path    string `json:"path,omitempty"`
	Step    *int   `json:"step,omitempty"`
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, errorBody{Error: errorDetail{Kind: kindBadRequest, Message: message}})
}

func notFound(c echo.Context, name string, err error) error {
	return c.JSON(http.StatusNotFound, errorBody{Error: errorDetail{Kind: kindNotFound, Message: err.Error(), Ref: name}})
}

func storeFailure(c echo.Context, err error) error {
	return c.JSON(http.StatusInternalServerError, errorBody{Error: errorDetail{Kind: kindStore, Message: err.Error()}})
}

// editFailure maps edit errors to 422 with the taxonomy code as the kind.
// Rejected batches carry the failing step index.
func editFailure(c echo.Context, err error) error {
	detail := errorDetail{Message: err.Error()}

	var stepErr *editor.BatchStepError
	if errors.As(err, &stepErr) {
		step := stepErr.Step
		detail.Step = &step
	}

	var ee *patch.EditError
	if !errors.As(err, &ee) {
		return c.JSON(http.StatusInternalServerError, errorBody{Error: errorDetail{Kind: "INTERNAL", Message: err.Error()}})
	}
	detail.Kind = string(ee.Code)
	detail.Ref = ee.Ref
	detail.Path = ee.Path

	return c.JSON(http.StatusUnprocessableEntity, errorBody{Error: detail})
}
