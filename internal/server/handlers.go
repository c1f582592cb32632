package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flowscribe/flowscribe/internal/model"
)

// editRequest carries one command and the scenario document to edit.
type editRequest struct {
	Command  string          `json:"command" validate:"required"`
	Scenario json.RawMessage `json:"scenario" validate:"required"`
}

// batchRequest carries an ordered command list and the starting scenario.
type batchRequest struct {
	Commands []string        `json:"commands" validate:"required,min=1"`
	Scenario json.RawMessage `json:"scenario" validate:"required"`
}

// decodeScenario turns the raw scenario field into a model document.
func decodeScenario(c echo.Context, raw json.RawMessage) (*model.Scenario, error) {
	sc, err := model.Decode(raw)
	if err != nil {
		return nil, badRequest(c, fmt.Sprintf("invalid scenario: %v", err))
	}
	return sc, nil
}

func (s *Server) handlePreview(c echo.Context) error {
	req := new(editRequest)
	if err := c.Bind(req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return badRequest(c, "command and scenario are required")
	}

	sc, err := decodeScenario(c, req.Scenario)
	if err != nil {
		return err
	}

	res, err := s.cfg.Editor.Preview(req.Command, sc)
	if err != nil {
		return editFailure(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleApply(c echo.Context) error {
	req := new(editRequest)
	if err := c.Bind(req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return badRequest(c, "command and scenario are required")
	}

	sc, err := decodeScenario(c, req.Scenario)
	if err != nil {
		return err
	}

	res, err := s.cfg.Editor.Apply(req.Command, sc)
	if err != nil {
		return editFailure(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleBatch(c echo.Context) error {
	req := new(batchRequest)
	if err := c.Bind(req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return badRequest(c, "commands and scenario are required")
	}

	sc, err := decodeScenario(c, req.Scenario)
	if err != nil {
		return err
	}

	res, err := s.cfg.Editor.Batch(req.Commands, sc)
	if err != nil {
		return editFailure(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleHelp(c echo.Context) error {
	return c.JSON(http.StatusOK, s.cfg.Editor.Help())
}
