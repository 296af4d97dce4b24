package server

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Nithin218/MindMate-AI/internal/agent/core"
)

// Runner is the pipeline surface the query handler needs. The orchestrator
// satisfies it; tests substitute a stub.
type Runner interface {
	Run(ctx context.Context, query string) (core.Result, error)
}

type QueryHandler struct {
	Runner       Runner
	IncludeTrace bool
	Logger       *log.Logger
}

func (h *QueryHandler) Register(g *echo.Group) {
	g.POST("/query", h.query)
}

func (h *QueryHandler) query(c echo.Context) error {
	var req QueryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "question required")
	}

	result, err := h.Runner.Run(c.Request().Context(), req.Question)
	if err != nil {
		if errors.Is(err, core.ErrEmptyQuery) {
			return echo.NewHTTPError(http.StatusBadRequest, "question required")
		}
		h.Logger.Printf("query run error: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := QueryResponse{
		Answer:       result.Answer,
		Emotion:      result.Emotion,
		RunID:        result.RunID,
		ProcessingMS: result.ProcessingTime.Milliseconds(),
	}
	if h.IncludeTrace {
		resp.Trace = result.Trace
	}
	return c.JSON(http.StatusOK, resp)
}
