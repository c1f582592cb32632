package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flowscribe/flowscribe/internal/model"
	"github.com/flowscribe/flowscribe/internal/store"
)

func (s *Server) handleListScenarios(c echo.Context) error {
	infos, err := s.cfg.Store.ListScenarios(c.Request().Context())
	if err != nil {
		return storeFailure(c, err)
	}
	return c.JSON(http.StatusOK, infos)
}

func (s *Server) handleGetScenario(c echo.Context) error {
	name := c.Param("name")
	sc, err := s.cfg.Store.GetScenario(c.Request().Context(), name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound(c, name, err)
		}
		return storeFailure(c, err)
	}
	return c.JSON(http.StatusOK, sc)
}

// handlePutScenario stores the request body under the path name. The body
// must be a valid scenario document; its own name field is not consulted.
func (s *Server) handlePutScenario(c echo.Context) error {
	name := c.Param("name")

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return badRequest(c, "unreadable request body")
	}
	sc, err := model.Decode(body)
	if err != nil {
		return badRequest(c, "invalid scenario: "+err.Error())
	}

	if err := s.cfg.Store.SaveScenario(c.Request().Context(), name, sc); err != nil {
		return storeFailure(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// handleRevisions lists a scenario's revision history, oldest first. A
// scenario with no history yields an empty list, not a 404.
func (s *Server) handleRevisions(c echo.Context) error {
	revs, err := s.cfg.Store.Revisions(c.Request().Context(), c.Param("name"))
	if err != nil {
		return storeFailure(c, err)
	}
	return c.JSON(http.StatusOK, revs)
}
