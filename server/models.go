package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/richinex/arbiter/arena"
	"github.com/richinex/arbiter/llm"
	"github.com/richinex/arbiter/model"
)

type compareRequest struct {
	Prompt    string   `json:"prompt" binding:"required"`
	Providers []string `json:"providers" binding:"required"`
}

type arbitrateRequest struct {
	Provider string `json:"provider" binding:"required"`
}

type slotResultView struct {
	Slot      model.SlotKey   `json:"slot"`
	Provider  string          `json:"provider"`
	Model     string          `json:"model"`
	Content   string          `json:"content,omitempty"`
	Error     string          `json:"error,omitempty"`
	ElapsedMs int64           `json:"elapsedMs"`
	Usage     *llm.TokenUsage `json:"usage,omitempty"`
}

type verdictView struct {
	Provider string          `json:"provider"`
	Model    string          `json:"model"`
	Content  string          `json:"content"`
	Usage    *llm.TokenUsage `json:"usage,omitempty"`
}

func (s *Server) resolveProviders(names []string) ([]llm.Provider, error) {
	providers := make([]llm.Provider, 0, len(names))
	for _, name := range names {
		p, err := s.providers(name)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, nil
}

func (s *Server) modelsDisabled(c *gin.Context) bool {
	if s.arena != nil {
		return false
	}
	c.AbortWithStatusJSON(http.StatusNotImplemented, gin.H{"error": "model providers are not configured"})
	return true
}

func (s *Server) compare(c *gin.Context) {
	if s.modelsDisabled(c) {
		return
	}
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	providers, err := s.resolveProviders(req.Providers)
	if err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.llmTimeout)
	defer cancel()

	results, err := s.arena.Compare(ctx, providers, req.Prompt)
	if errors.Is(err, arena.ErrNoProviders) || errors.Is(err, arena.ErrTooManyProviders) {
		badRequest(c, err)
		return
	}

	views := make([]slotResultView, len(results))
	for i, r := range results {
		views[i] = slotResultView{
			Slot:      r.Slot,
			Provider:  r.Provider,
			Model:     r.Model,
			Content:   r.Content,
			ElapsedMs: r.Elapsed.Milliseconds(),
			Usage:     r.Usage,
		}
		if r.Err != nil {
			views[i].Error = r.Err.Error()
		}
	}

	status := http.StatusOK
	if err != nil {
		_ = c.Error(err)
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"results": views})
}

func (s *Server) arbitrate(c *gin.Context) {
	if s.modelsDisabled(c) {
		return
	}
	var req arbitrateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := s.providers(req.Provider)
	if err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.llmTimeout)
	defer cancel()

	resp, err := s.arena.Arbitrate(ctx, p)
	switch {
	case errors.Is(err, arena.ErrNoQuotes):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, verdictView{
		Provider: p.Name(),
		Model:    p.Model(),
		Content:  resp.Content,
		Usage:    resp.Usage,
	})
}
