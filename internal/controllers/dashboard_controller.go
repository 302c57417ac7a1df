package controllers

import (
	"net/http"

	"github.com/citypulse/backend/internal/middleware"
	"github.com/citypulse/backend/internal/repository"
	"github.com/citypulse/backend/internal/services"
	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	ranking *services.RankingService
	store   repository.Store
}

func NewDashboardController(ranking *services.RankingService, store repository.Store) *DashboardController {
	return &DashboardController{ranking: ranking, store: store}
}

// GetDashboard returns the authority's department complaints ranked by
// priority, with the High/Medium/Low counts for the header widgets.
func (dc *DashboardController) GetDashboard(c *gin.Context) {
	department := middleware.ActorDepartment(c)
	if department == nil {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Department account required"})
		return
	}

	ranked, summary, err := dc.ranking.ListDepartmentComplaints(*department)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    ranked,
		"summary": summary,
	})
}

// GetStaff lists the staff accounts of the authority's department for the
// assignment picker.
func (dc *DashboardController) GetStaff(c *gin.Context) {
	department := middleware.ActorDepartment(c)
	if department == nil {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Department account required"})
		return
	}

	staff, err := dc.store.ListStaff(*department)
	if err != nil {
		respondError(c, err)
		return
	}
	for i := range staff {
		staff[i].Password = ""
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": staff})
}
