package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/richinex/arbiter/comparison"
	"github.com/richinex/arbiter/model"
	"go.uber.org/zap"
)

type slotsRequest struct {
	Count *int `json:"count" binding:"required"`
}

type responseRequest struct {
	Content *string `json:"content" binding:"required"`
}

type snippetRequest struct {
	Text           string `json:"text"`
	ModelLabel     string `json:"modelLabel"`
	CardID         string `json:"cardId"`
	SelectionRange string `json:"selectionRange"`
}

type notesRequest struct {
	Notes *string `json:"notes" binding:"required"`
}

type selectionRequest struct {
	ID string `json:"id"`
}

type modalRequest struct {
	Open *bool `json:"open" binding:"required"`
}

type navigateRequest struct {
	Direction comparison.Direction `json:"direction" binding:"required"`
}

type responsesView struct {
	SlotCount int                       `json:"slotCount"`
	Labels    []string                  `json:"labels"`
	Responses []comparison.SlotResponse `json:"responses"`
}

func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// writeState answers with the full state in its persisted JSON form.
func (s *Server) writeState(c *gin.Context, status int) {
	data, err := comparison.Encode(s.store.Snapshot())
	if err != nil {
		s.log.Error("failed to encode state", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to encode state"})
		return
	}
	c.Data(status, "application/json; charset=utf-8", data)
}

func (s *Server) getState(c *gin.Context) {
	s.writeState(c, http.StatusOK)
}

func (s *Server) getResponses(c *gin.Context) {
	c.JSON(http.StatusOK, responsesView{
		SlotCount: s.store.SlotCount(),
		Labels:    s.store.ModelLabels(),
		Responses: s.store.CurrentModelResponses(),
	})
}

func (s *Server) putSlots(c *gin.Context) {
	var req slotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s.store.SetSlotCount(*req.Count)
	s.writeState(c, http.StatusOK)
}

func (s *Server) putResponse(c *gin.Context) {
	var req responseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	key, ok := model.ParseSlotKey(c.Param("key"))
	if !ok {
		key = model.SlotKey(c.Param("key"))
	}
	s.store.SetModelResponse(key, *req.Content)
	s.writeState(c, http.StatusOK)
}

func (s *Server) postSnippet(c *gin.Context) {
	var req snippetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sn, ok := s.store.AddSnippet(req.Text, req.ModelLabel, model.SnippetMetadata{
		CardID:         req.CardID,
		SelectionRange: req.SelectionRange,
	})
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": model.ErrEmptySnippetText.Error()})
		return
	}
	c.JSON(http.StatusCreated, sn)
}

func (s *Server) deleteSnippet(c *gin.Context) {
	s.store.RemoveSnippet(c.Param("id"))
	s.writeState(c, http.StatusOK)
}

func (s *Server) deleteSnippets(c *gin.Context) {
	s.store.ClearSnippets()
	s.writeState(c, http.StatusOK)
}

func (s *Server) putNotes(c *gin.Context) {
	var req notesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s.store.SetArbitrationNotes(*req.Notes)
	s.writeState(c, http.StatusOK)
}

func (s *Server) putSelection(c *gin.Context) {
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s.store.SelectSnippet(req.ID)
	s.writeState(c, http.StatusOK)
}

func (s *Server) putModal(c *gin.Context) {
	var req modalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s.store.SetArbitrationModalOpen(*req.Open)
	s.writeState(c, http.StatusOK)
}

func (s *Server) postHistory(c *gin.Context) {
	rec := s.store.SaveCurrentComparison()
	c.JSON(http.StatusCreated, rec)
}

func (s *Server) navigateHistory(c *gin.Context) {
	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s.store.NavigateComparison(req.Direction)
	s.writeState(c, http.StatusOK)
}

func (s *Server) loadHistory(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, err)
		return
	}
	s.store.LoadComparison(index)
	s.writeState(c, http.StatusOK)
}

func (s *Server) getTemplate(c *gin.Context) {
	tmpl := s.store.ArbitrationTemplate()
	if c.Query("format") != "html" {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(tmpl))
		return
	}

	html, err := comparison.RenderHTML(tmpl)
	if err != nil {
		s.log.Error("failed to render template", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to render template"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (s *Server) deleteData(c *gin.Context) {
	s.store.ClearAllData()
	s.writeState(c, http.StatusOK)
}
