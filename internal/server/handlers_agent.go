package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lhyssy/AI-Agent-code-web/internal/domain"
	apperrors "github.com/lhyssy/AI-Agent-code-web/internal/errors"
)

// writeError maps the error taxonomy onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	switch {
	case apperrors.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

type analyzeRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := s.system.ProcessInput(c.Request.Context(), req.Message)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type createTaskRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	AssignedTo   string   `json:"assigned_to"`
	Priority     int      `json:"priority"`
	Dependencies []string `json:"dependencies"`
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	task, err := s.system.CreateTask(req.Title, req.Description, req.AssignedTo, req.Priority, req.Dependencies)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) handleGetTask(c *gin.Context) {
	task, err := s.system.GetTask(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

type updateTaskStatusRequest struct {
	Status    string              `json:"status"`
	Artifacts []domain.Attachment `json:"artifacts"`
}

func (s *Server) handleUpdateTaskStatus(c *gin.Context) {
	var req updateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	if !s.system.UpdateTaskStatus(c.Param("id"), domain.TaskStatus(req.Status), req.Artifacts) {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "status updated"})
}

func (s *Server) handleTaskDependencies(c *gin.Context) {
	deps, err := s.system.TaskDependencies(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dependencies": deps})
}

func (s *Server) handleDependentTasks(c *gin.Context) {
	dependents, err := s.system.DependentTasks(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dependents": dependents})
}

type saveArtifactRequest struct {
	FilePath      string         `json:"file_path"`
	Content       string         `json:"content"`
	Language      string         `json:"language"`
	CreatedBy     string         `json:"created_by"`
	CommitMessage string         `json:"commit_message"`
	Metadata      map[string]any `json:"metadata"`
}

func (s *Server) handleSaveArtifact(c *gin.Context) {
	var req saveArtifactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	artifact, err := s.system.SaveCodeArtifact(
		req.FilePath, req.Content, req.Language, req.CreatedBy, req.CommitMessage, req.Metadata)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, artifact)
}

func (s *Server) handleArtifactHistory(c *gin.Context) {
	filePath := c.Query("file_path")
	if filePath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_path is required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": s.system.GetArtifactHistory(filePath)})
}

func (s *Server) handleArtifactLatest(c *gin.Context) {
	filePath := c.Query("file_path")
	if filePath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_path is required"})
		return
	}

	artifact, err := s.system.GetArtifactVersion(filePath, "")
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, artifact)
}

func (s *Server) handleArtifactVersion(c *gin.Context) {
	filePath := c.Query("file_path")
	version := c.Query("version")
	if filePath == "" || version == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_path and version are required"})
		return
	}

	artifact, err := s.system.GetArtifactVersion(filePath, version)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, artifact)
}

func (s *Server) handleListAgents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"agents": s.system.ListAgents()})
}

func (s *Server) handleGetAgent(c *gin.Context) {
	agent, err := s.system.GetAgent(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, agent)
}

func (s *Server) handleGetAgentByName(c *gin.Context) {
	agent, err := s.system.GetAgentByName(c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, agent)
}
