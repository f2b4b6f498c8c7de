package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createSessionRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleCreateSession(c *gin.Context) {
	var req createSessionRequest
	// The body is optional; an empty one creates an untitled session.
	_ = c.ShouldBindJSON(&req)

	session := s.chatSvc.CreateSession(req.Title)
	c.JSON(http.StatusCreated, session)
}

func (s *Server) handleListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": s.chatSvc.ListSessions()})
}

func (s *Server) handleGetSession(c *gin.Context) {
	session, err := s.chatSvc.GetSession(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	if !s.chatSvc.DeleteSession(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "session deleted"})
}

func (s *Server) handleArchiveSession(c *gin.Context) {
	if !s.chatSvc.ArchiveSession(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "session archived"})
}

type sendMessageRequest struct {
	Message string         `json:"message"`
	Context map[string]any `json:"context"`
}

func (s *Server) handleSendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := s.chatSvc.ProcessMessage(c.Request.Context(), c.Param("id"), req.Message, req.Context)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleSessionHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"history": s.chatSvc.SessionHistory(c.Param("id"))})
}

func (s *Server) handleClearSession(c *gin.Context) {
	if !s.chatSvc.ClearSessionHistory(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "history cleared"})
}

type updateTitleRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleUpdateSessionTitle(c *gin.Context) {
	var req updateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	if !s.chatSvc.UpdateSessionTitle(c.Param("id"), req.Title) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "title updated"})
}
