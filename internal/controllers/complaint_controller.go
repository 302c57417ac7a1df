package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/citypulse/backend/internal/apperrors"
	"github.com/citypulse/backend/internal/logger"
	"github.com/citypulse/backend/internal/middleware"
	"github.com/citypulse/backend/internal/models"
	"github.com/citypulse/backend/internal/repository"
	"github.com/citypulse/backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ComplaintController struct {
	lifecycle *services.LifecycleService
	store     repository.Store
}

func NewComplaintController(lifecycle *services.LifecycleService, store repository.Store) *ComplaintController {
	return &ComplaintController{lifecycle: lifecycle, store: store}
}

type CreateComplaintRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Department  string  `json:"department" binding:"required"`
	Location    string  `json:"location" binding:"required"`
	ImageURL    *string `json:"imageUrl"`
}

type UpdateStatusRequest struct {
	Status          string  `json:"status" binding:"required"`
	Notes           string  `json:"notes"`
	ProofURL        *string `json:"proofUrl"`
	ResolutionNotes *string `json:"resolutionNotes"`
}

type AssignStaffRequest struct {
	StaffID uint `json:"staffId" binding:"required"`
}

type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// respondError maps the service error taxonomy onto HTTP responses.
// Validation and authorization failures surface their specific message;
// persistence failures do not leak storage internals.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": err.Error()})
	default:
		logger.WithError(err, "complaint_controller").Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Something went wrong, please try again"})
	}
}

func currentUserID(c *gin.Context) uint {
	id, _ := c.Get("user_id")
	userID, _ := id.(uint)
	return userID
}

func currentRole(c *gin.Context) models.UserRole {
	value, _ := c.Get("user_role")
	roleString, _ := value.(string)
	role, _ := models.ParseRole(roleString)
	return role
}

func complaintIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid complaint ID"})
		return 0, false
	}
	return uint(id), true
}

func (cc *ComplaintController) CreateComplaint(c *gin.Context) {
	var req CreateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data", "errors": err.Error()})
		return
	}

	result, err := cc.lifecycle.CreateComplaint(services.CreateComplaintInput{
		ReporterID:  currentUserID(c),
		Department:  req.Department,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if result.IsDuplicate {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"success":     true,
		"isDuplicate": result.IsDuplicate,
		"message":     result.Message,
		"data":        result.Complaint,
	})
}

func (cc *ComplaintController) GetComplaint(c *gin.Context) {
	id, ok := complaintIDParam(c)
	if !ok {
		return
	}
	complaint, err := cc.store.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": complaint})
}

func (cc *ComplaintController) GetMyComplaints(c *gin.Context) {
	complaints, err := cc.store.ListByCreator(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": complaints})
}

func (cc *ComplaintController) GetAssignedComplaints(c *gin.Context) {
	complaints, err := cc.store.ListAssignedTo(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": complaints})
}

func (cc *ComplaintController) GetTimeline(c *gin.Context) {
	id, ok := complaintIDParam(c)
	if !ok {
		return
	}
	entries, err := cc.lifecycle.Timeline(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": entries})
}

func (cc *ComplaintController) AddComment(c *gin.Context) {
	id, ok := complaintIDParam(c)
	if !ok {
		return
	}
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
		return
	}
	if err := cc.lifecycle.AddComment(id, currentUserID(c), currentRole(c), req.Text); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Comment added"})
}

func (cc *ComplaintController) AssignStaff(c *gin.Context) {
	id, ok := complaintIDParam(c)
	if !ok {
		return
	}
	var req AssignStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
		return
	}

	complaint, err := cc.lifecycle.AssignStaff(services.AssignStaffInput{
		ComplaintID:     id,
		StaffID:         req.StaffID,
		ActorID:         currentUserID(c),
		ActorDepartment: middleware.ActorDepartment(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": complaint})
}

func (cc *ComplaintController) UnassignStaff(c *gin.Context) {
	id, ok := complaintIDParam(c)
	if !ok {
		return
	}
	staffID, err := strconv.ParseUint(c.Param("staffId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid staff ID"})
		return
	}

	complaint, err := cc.lifecycle.UnassignStaff(services.AssignStaffInput{
		ComplaintID:     id,
		StaffID:         uint(staffID),
		ActorID:         currentUserID(c),
		ActorDepartment: middleware.ActorDepartment(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": complaint})
}

func (cc *ComplaintController) UpdateStatus(c *gin.Context) {
	id, ok := complaintIDParam(c)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
		return
	}

	complaint, err := cc.lifecycle.UpdateStatus(services.UpdateStatusInput{
		ComplaintID:     id,
		ActorID:         currentUserID(c),
		ActorRole:       currentRole(c),
		ActorDepartment: middleware.ActorDepartment(c),
		NewStatus:       req.Status,
		Notes:           req.Notes,
		ProofURL:        req.ProofURL,
		ResolutionNotes: req.ResolutionNotes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": complaint})
}

// UploadProof stores the proof image in the upload directory and attaches
// the resulting URL to the complaint. Only the URL is persisted; the bytes
// live in the blob directory.
func (cc *ComplaintController) UploadProof(c *gin.Context) {
	id, ok := complaintIDParam(c)
	if !ok {
		return
	}

	file, err := c.FormFile("proof")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Proof image file is required"})
		return
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		respondError(c, err)
		return
	}

	name := fmt.Sprintf("%s%s", uuid.New().String(), filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, filepath.Join(uploadDir, name)); err != nil {
		respondError(c, err)
		return
	}
	url := fmt.Sprintf("/uploads/%s", name)

	complaint, err := cc.lifecycle.AttachProof(id, currentUserID(c), currentRole(c), middleware.ActorDepartment(c), url)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "proofUrl": url, "data": complaint})
}
