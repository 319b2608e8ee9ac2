package api

import (
	"net/http"

	"gymsync/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// LandingHandler serves the unauthenticated landing page and stats counters.
type LandingHandler struct {
	landingService service.LandingService
}

// NewLandingHandler creates a new LandingHandler.
func NewLandingHandler(landingService service.LandingService) *LandingHandler {
	return &LandingHandler{landingService: landingService}
}

// Landing returns everything the public landing page needs in one call.
func (h *LandingHandler) Landing(c *gin.Context) {
	content, err := h.landingService.GetLanding(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load landing content", CodeInternalError)
		return
	}
	respondOK(c, http.StatusOK, content)
}

// Features returns the static marketing feature list.
func (h *LandingHandler) Features(c *gin.Context) {
	respondOK(c, http.StatusOK, []gin.H{
		{"title": "Personal Trainers", "description": "Every member is matched with a dedicated trainer"},
		{"title": "Custom Plans", "description": "Workout and diet plans tailored to your goals"},
		{"title": "Direct Chat", "description": "Message your trainer whenever you need guidance"},
		{"title": "Progress Tracking", "description": "Upload progress photos and watch yourself improve"},
	})
}

// Plans returns just the catalog section of the landing page.
func (h *LandingHandler) Plans(c *gin.Context) {
	content, err := h.landingService.GetLanding(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load plans", CodeInternalError)
		return
	}
	respondOK(c, http.StatusOK, content.Plans)
}

// Stats returns the anonymous counters block.
func (h *LandingHandler) Stats(c *gin.Context) {
	stats, err := h.landingService.GetStats(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load stats", CodeInternalError)
		return
	}
	respondOK(c, http.StatusOK, stats)
}

// TrainerStats returns only the trainer counter.
func (h *LandingHandler) TrainerStats(c *gin.Context) {
	stats, err := h.landingService.GetStats(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load stats", CodeInternalError)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"trainers": stats.Trainers})
}

// PlanStats returns only the plan counter.
func (h *LandingHandler) PlanStats(c *gin.Context) {
	stats, err := h.landingService.GetStats(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load stats", CodeInternalError)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"plans": stats.Plans})
}
