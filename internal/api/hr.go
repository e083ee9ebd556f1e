package api

import (
	"net/http"

	"github.com/Aman-1206/Joblink/internal/api/middleware"
	"github.com/Aman-1206/Joblink/internal/api/respond"
	"github.com/Aman-1206/Joblink/internal/service"
	"github.com/Aman-1206/Joblink/internal/store"

	"github.com/gin-gonic/gin"
)

type createJobRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CompanyName string `json:"companyName"`
	Location    string `json:"location"`
	Type        string `json:"type"`
}

// updateJobRequest leaves absent fields untouched.
type updateJobRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	CompanyName *string `json:"companyName"`
	Location    *string `json:"location"`
	Type        *string `json:"type"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// GET /api/hr/my-jobs?q=
func (s *Server) handleMyJobs(c *gin.Context) {
	jobs, err := s.svc.MyJobs(c.Request.Context(), middleware.UserID(c), c.Query("q"))
	if err != nil {
		respond.Error(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// POST /api/hr/jobs
func (s *Server) handleCreateJob(c *gin.Context) {
	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "invalid request body")
		return
	}
	job, err := s.svc.CreateJob(c.Request.Context(), middleware.UserID(c), service.JobInput{
		Title:       req.Title,
		Description: req.Description,
		CompanyName: req.CompanyName,
		Location:    req.Location,
		Type:        req.Type,
	})
	if err != nil {
		respond.Error(c, s.logger, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

// PUT /api/hr/jobs/:id
func (s *Server) handleUpdateJob(c *gin.Context) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}
	var req updateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "invalid request body")
		return
	}
	job, err := s.svc.UpdateJob(c.Request.Context(), middleware.UserID(c), id, store.JobUpdate{
		Title:       req.Title,
		Description: req.Description,
		CompanyName: req.CompanyName,
		Location:    req.Location,
		Type:        req.Type,
	})
	if err != nil {
		respond.Error(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// DELETE /api/hr/jobs/:id
func (s *Server) handleDeleteOwnJob(c *gin.Context) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}
	if err := s.svc.DeleteJob(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		respond.Error(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Job deleted"})
}

// GET /api/hr/all-applicants?q=
func (s *Server) handleAllApplicants(c *gin.Context) {
	rows, err := s.svc.AllApplicants(c.Request.Context(), middleware.UserID(c), c.Query("q"))
	if err != nil {
		respond.Error(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GET /api/hr/jobs/:id/applications?q=
func (s *Server) handleJobApplications(c *gin.Context) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}
	rows, err := s.svc.JobApplications(c.Request.Context(), middleware.UserID(c), id, c.Query("q"))
	if err != nil {
		respond.Error(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// PATCH /api/hr/applications/:id/status
func (s *Server) handleUpdateStatus(c *gin.Context) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "invalid request body")
		return
	}
	app, err := s.svc.UpdateStatus(c.Request.Context(), id, middleware.UserID(c), req.Status)
	if err != nil {
		respond.Error(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, app)
}
