package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/risk-signal-engine/internal/domain"
	"github.com/risk-signal-engine/internal/presenter"
)

type messageRequest struct {
	SubjectID string `json:"subject_id" binding:"required"`
	Text      string `json:"text" binding:"required"`
}

type selfReportRequest struct {
	SubjectID string `json:"subject_id" binding:"required"`
}

// handleMessage scans one conversational turn. The response tells the
// caller whether to redirect the user to the crisis-support flow; the scan
// itself never fails outward.
func (s *Server) handleMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subject_id and text are required"})
		return
	}

	trigger := s.coordinator.HandleMessage(c.Request.Context(), req.SubjectID, req.Text)
	c.JSON(http.StatusOK, gin.H{"trigger_crisis": trigger})
}

// handleSelfReport records the explicit "I am in crisis" control. It always
// escalates.
func (s *Server) handleSelfReport(c *gin.Context) {
	var req selfReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subject_id is required"})
		return
	}

	trigger := s.coordinator.HandleSelfReport(c.Request.Context(), req.SubjectID)
	c.JSON(http.StatusOK, gin.H{"trigger_crisis": trigger})
}

// handleSummary serves the professional-facing summary. A storage outage is
// surfaced as an explicit error state: an empty-looking dashboard during an
// outage is indistinguishable from "no risk events", which is unacceptable
// for a safety-monitoring surface.
func (s *Server) handleSummary(c *gin.Context) {
	window, ok := s.aggregate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, presenter.Professional(window))
}

// handleOverview serves the reduced patient-facing read of the same
// aggregate.
func (s *Server) handleOverview(c *gin.Context) {
	window, ok := s.aggregate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, presenter.Patient(window))
}

// aggregate parses the window request and runs the aggregator, mapping the
// error taxonomy onto HTTP statuses.
func (s *Server) aggregate(c *gin.Context) (*domain.AggregateWindow, bool) {
	subjectID := c.Param("id")

	windowDays := 0
	if raw := c.Query("window_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "window_days must be an integer"})
			return nil, false
		}
		windowDays = parsed
	}

	window, err := s.aggregator.Summarize(c.Request.Context(), subjectID, windowDays)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidWindow):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrStorageUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "risk history temporarily unavailable",
			})
		default:
			s.log.WithError(err).Error("Summary request failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return nil, false
	}

	return window, true
}
