package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/five82/otter/internal/engine"
	"github.com/five82/otter/internal/entity"
	"github.com/five82/otter/internal/health"
	"github.com/five82/otter/internal/settings"
	"github.com/five82/otter/internal/state"
)

// toggleTimeout bounds a background toggle including its follow-up refresh.
const toggleTimeout = 30 * time.Second

type snapshotResponse struct {
	Connection string               `json:"connection"`
	Error      string               `json:"error,omitempty"`
	Config     *entity.ServerConfig `json:"config"`
	Entities   []entity.State       `json:"entities"`
	LastUpdate *time.Time           `json:"lastUpdate,omitempty"`
	Health     health.Status        `json:"health"`
	Update     engine.Update        `json:"update"`
}

type readingResponse struct {
	Metric   string    `json:"metric"`
	EntityID string    `json:"entityId,omitempty"`
	Value    *float64  `json:"value"`
	Percent  float64   `json:"percent"`
	Detected bool      `json:"detected"`
	History  []float64 `json:"history,omitempty"`
}

type healthResponse struct {
	Status     health.Status       `json:"status"`
	Details    string              `json:"details,omitempty"`
	Thresholds settings.Thresholds `json:"thresholds"`
	Readings   []readingResponse   `json:"readings"`
}

func (s *Server) handleSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, s.snapshot(s.engine.Snapshot()))
}

func (s *Server) snapshot(snap state.Snapshot) snapshotResponse {
	resp := snapshotResponse{
		Connection: connectionName(snap.Connection),
		Error:      snap.Connection.Message,
		Config:     snap.Config,
		Entities:   snap.Entities,
		Health:     s.engine.Health(),
		Update:     s.engine.Update(),
	}
	if resp.Entities == nil {
		resp.Entities = []entity.State{}
	}
	if !snap.LastUpdate.IsZero() {
		ts := snap.LastUpdate
		resp.LastUpdate = &ts
	}
	return resp
}

func connectionName(conn state.Connection) string {
	if conn.IsError() {
		return "error"
	}
	return conn.String()
}

func (s *Server) handleHealth(c *gin.Context) {
	readings := s.engine.Readings()
	thresholds := s.engine.Settings().Thresholds
	status := health.Evaluate(readings, thresholds)
	history := s.engine.Snapshot().History

	resp := healthResponse{
		Status:     status,
		Thresholds: thresholds,
		Readings:   make([]readingResponse, 0, len(readings)),
	}
	if status == health.Warning || status == health.Critical {
		resp.Details = health.Details(readings, thresholds)
	}
	for _, r := range readings {
		rr := readingResponse{
			Metric:   r.Metric.String(),
			EntityID: r.EntityID,
			Percent:  health.GaugePercent(r),
			Detected: r.Detected,
			History:  history.Samples(r.Metric),
		}
		if r.OK {
			v := r.Value
			rr.Value = &v
		}
		resp.Readings = append(resp.Readings, rr)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleEntities(c *gin.Context) {
	states := s.engine.Entities(strings.TrimSpace(c.Query("domain")), strings.TrimSpace(c.Query("q")))
	if states == nil {
		states = []entity.State{}
	}
	c.JSON(http.StatusOK, gin.H{"data": states, "count": len(states)})
}

func (s *Server) handleToggle(c *gin.Context) {
	id := c.Param("id")
	if !strings.Contains(id, ".") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entity id must be domain.object_id"})
		return
	}
	s.background(func() {
		ctx, cancel := context.WithTimeout(context.Background(), toggleTimeout)
		defer cancel()
		s.engine.ToggleEntity(ctx, id)
	})
	c.JSON(http.StatusAccepted, gin.H{"entityId": id, "status": "toggling"})
}

func (s *Server) handleDashboard(c *gin.Context) {
	states := s.engine.DashboardStates()
	c.JSON(http.StatusOK, gin.H{
		"pinned": s.engine.Settings().Dashboard,
		"data":   states,
	})
}

func (s *Server) handlePin(c *gin.Context) {
	id := c.Param("id")
	if err := s.engine.AddToDashboard(id); err != nil {
		s.log.Warn("pin failed", zap.String("entity_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entityId": id, "pinned": true})
}

func (s *Server) handleUnpin(c *gin.Context) {
	id := c.Param("id")
	if err := s.engine.RemoveFromDashboard(id); err != nil {
		s.log.Warn("unpin failed", zap.String("entity_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entityId": id, "pinned": false})
}

func (s *Server) handleRefresh(c *gin.Context) {
	// The refresh updates shared state; a client hanging up must not fail it.
	s.engine.Refresh(context.WithoutCancel(c.Request.Context()))
	c.JSON(http.StatusOK, s.snapshot(s.engine.Snapshot()))
}

func (s *Server) handleMenuBar(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.MenuBarLabel())
}

func (s *Server) handleSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Settings())
}
