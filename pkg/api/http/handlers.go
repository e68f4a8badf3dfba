package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aescanero/lienzo/internal/application/graph"
	"github.com/aescanero/lienzo/internal/domain"
)

// AddNodeRequest represents a node creation request.
type AddNodeRequest struct {
	Kind     domain.NodeKind `json:"type" binding:"required"`
	Position domain.Position `json:"position"`
}

// ConnectRequest represents an edge creation request.
type ConnectRequest struct {
	Source       string `json:"source" binding:"required"`
	Target       string `json:"target" binding:"required"`
	SourceHandle string `json:"sourceHandle"`
	TargetHandle string `json:"targetHandle"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details.
type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(c *gin.Context) {
	nodes, edges := s.store.Size()
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"graph": gin.H{
			"nodes": nodes,
			"edges": edges,
		},
	})
}

// pushHistory offers the current graph state to the history manager. Called
// after every structural mutation; never after a run-result write.
func (s *Server) pushHistory() {
	if s.history.Push(s.store.Nodes(), s.store.Edges()) {
		s.metrics.RecordSnapshot()
	}
	s.metrics.SetHistoryDepth(s.history.Depth())
	nodes, edges := s.store.Size()
	s.metrics.SetGraphSize(nodes, edges)
}

// handleAddNode handles node creation.
func (s *Server) handleAddNode(c *gin.Context) {
	var req AddNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()},
		})
		return
	}

	id, err := s.store.AddNode(req.Kind, req.Position)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{Code: "UNKNOWN_KIND", Message: "unknown node kind: " + string(req.Kind)},
		})
		return
	}

	s.pushHistory()
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// handleUpdateNodeData handles node field edits. Field edits are excluded
// from undo granularity, so no snapshot is taken.
func (s *Server) handleUpdateNodeData(c *gin.Context) {
	var patch domain.NodeData
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()},
		})
		return
	}

	if err := s.store.UpdateNodeData(c.Param("id"), patch); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{Code: "NOT_FOUND", Message: "Node not found"},
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// handleDeleteNode handles node deletion with edge cascade.
func (s *Server) handleDeleteNode(c *gin.Context) {
	s.store.DeleteNode(c.Param("id"))
	s.pushHistory()
	c.Status(http.StatusNoContent)
}

// handleDuplicateNode handles node duplication.
func (s *Server) handleDuplicateNode(c *gin.Context) {
	id, err := s.store.DuplicateNode(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{Code: "NOT_FOUND", Message: "Node not found"},
		})
		return
	}

	s.pushHistory()
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// handleConnect handles edge creation.
func (s *Server) handleConnect(c *gin.Context) {
	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()},
		})
		return
	}

	id, err := s.store.Connect(req.Source, req.SourceHandle, req.Target, req.TargetHandle)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{Code: "NOT_FOUND", Message: "Edge endpoint does not exist"},
		})
		return
	}

	s.pushHistory()
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// handleDisconnect handles explicit edge removal.
func (s *Server) handleDisconnect(c *gin.Context) {
	if err := s.store.Disconnect(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{Code: "NOT_FOUND", Message: "Edge not found"},
		})
		return
	}

	s.pushHistory()
	c.Status(http.StatusNoContent)
}

// handleBulkChanges applies a drag / multi-select change batch in one pass,
// so only one snapshot follows the whole gesture.
func (s *Server) handleBulkChanges(c *gin.Context) {
	var changes []graph.Change
	if err := c.ShouldBindJSON(&changes); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()},
		})
		return
	}

	s.store.ApplyChanges(changes)
	s.pushHistory()
	c.Status(http.StatusNoContent)
}

// handleUndo restores the previous structural state.
func (s *Server) handleUndo(c *gin.Context) {
	snap, ok := s.history.Undo()
	if !ok {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: ErrorDetail{Code: "NOTHING_TO_UNDO", Message: "Already at oldest state"},
		})
		return
	}

	s.store.SetGraph(snap.Nodes, snap.Edges)
	s.metrics.RecordUndo()
	c.JSON(http.StatusOK, s.codec.Serialize(snap.Nodes, snap.Edges))
}

// handleRedo restores the next structural state.
func (s *Server) handleRedo(c *gin.Context) {
	snap, ok := s.history.Redo()
	if !ok {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: ErrorDetail{Code: "NOTHING_TO_REDO", Message: "Already at newest state"},
		})
		return
	}

	s.store.SetGraph(snap.Nodes, snap.Edges)
	s.metrics.RecordRedo()
	c.JSON(http.StatusOK, s.codec.Serialize(snap.Nodes, snap.Edges))
}

// handleRunNode executes one node on demand.
func (s *Server) handleRunNode(c *gin.Context) {
	nodeID := c.Param("id")

	if err := s.executor.Run(c.Request.Context(), nodeID); err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownNode):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: ErrorDetail{Code: "NOT_FOUND", Message: "Node not found"},
			})
		case errors.Is(err, domain.ErrNotRunnable):
			c.JSON(http.StatusConflict, ErrorResponse{
				Error: ErrorDetail{Code: "NOT_RUNNABLE", Message: "Node kind does not compute"},
			})
		case domain.IsInsufficientResource(err):
			// Distinct status so the client can present an upgrade path.
			c.JSON(http.StatusPaymentRequired, ErrorResponse{
				Error: ErrorDetail{Code: "INSUFFICIENT_RESOURCE", Message: err.Error()},
			})
		default:
			c.JSON(http.StatusBadGateway, ErrorResponse{
				Error: ErrorDetail{Code: "RUN_FAILED", Message: err.Error()},
			})
		}
		return
	}

	node, _ := s.store.Node(nodeID)
	c.JSON(http.StatusOK, gin.H{
		"id":     nodeID,
		"status": "completed",
		"result": runResult(node),
	})
}

// runResult summarizes a node's last committed result.
func runResult(node domain.Node) gin.H {
	switch node.Kind {
	case domain.KindAssistant:
		return gin.H{"text": node.Data.LastText}
	case domain.KindImageGenerator:
		return gin.H{"imageUrl": node.Data.LastImageURL}
	case domain.KindVideoGenerator:
		return gin.H{"job": node.Data.LastVideoJob}
	default:
		return gin.H{}
	}
}

// handleExport serializes the live graph as a workflow document.
func (s *Server) handleExport(c *gin.Context) {
	c.JSON(http.StatusOK, s.codec.Serialize(s.store.Nodes(), s.store.Edges()))
}

// handleImport validates a workflow document and loads it as the live graph.
func (s *Server) handleImport(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()},
		})
		return
	}

	doc, err := s.codec.Deserialize(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{Code: "MALFORMED_DOCUMENT", Message: err.Error()},
		})
		return
	}

	s.store.SetGraph(doc.Nodes, doc.Edges)
	s.pushHistory()
	c.JSON(http.StatusOK, gin.H{
		"nodes": len(doc.Nodes),
		"edges": len(doc.Edges),
	})
}

// handleListWorkflows lists stored workflow names.
func (s *Server) handleListWorkflows(c *gin.Context) {
	names, err := s.workflows.List(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to list workflows", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{Code: "STORAGE_ERROR", Message: "Failed to list workflows"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"workflows": names,
		"total":     len(names),
	})
}

// handleSaveWorkflow stores the live graph under a name.
func (s *Server) handleSaveWorkflow(c *gin.Context) {
	name := c.Param("name")
	doc := s.codec.Serialize(s.store.Nodes(), s.store.Edges())

	if err := s.workflows.Save(c.Request.Context(), name, doc); err != nil {
		s.logger.Error("failed to save workflow",
			zap.String("name", name),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{Code: "STORAGE_ERROR", Message: "Failed to save workflow"},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"name":  name,
		"nodes": len(doc.Nodes),
		"edges": len(doc.Edges),
	})
}

// handleLoadWorkflow loads a named workflow as the live graph.
func (s *Server) handleLoadWorkflow(c *gin.Context) {
	name := c.Param("name")

	doc, err := s.workflows.Load(c.Request.Context(), name)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{Code: "NOT_FOUND", Message: "Workflow not found"},
		})
		return
	}

	s.store.SetGraph(doc.Nodes, doc.Edges)
	s.pushHistory()
	c.JSON(http.StatusOK, doc)
}

// handleDeleteWorkflow removes a named workflow.
func (s *Server) handleDeleteWorkflow(c *gin.Context) {
	name := c.Param("name")

	if err := s.workflows.Delete(c.Request.Context(), name); err != nil {
		s.logger.Error("failed to delete workflow",
			zap.String("name", name),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{Code: "STORAGE_ERROR", Message: "Failed to delete workflow"},
		})
		return
	}

	c.Status(http.StatusNoContent)
}
