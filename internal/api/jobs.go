package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Aman-1206/Joblink/internal/api/middleware"
	"github.com/Aman-1206/Joblink/internal/api/respond"
	"github.com/Aman-1206/Joblink/internal/pkg/storage"
	"github.com/Aman-1206/Joblink/internal/service"

	"github.com/gin-gonic/gin"
)

// applyRequest accepts either JSON or multipart form fields.
type applyRequest struct {
	JobID       json.Number `json:"jobId" form:"jobId"`
	CoverLetter string      `json:"coverLetter" form:"coverLetter"`
}

type reportRequest struct {
	JobID  json.Number `json:"jobId" form:"jobId"`
	Reason string      `json:"reason" form:"reason"`
}

func parseJobID(n json.Number) uint {
	v, err := strconv.ParseUint(n.String(), 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}

// formFile opens an optional multipart file. The returned close func is
// never nil.
func formFile(c *gin.Context, field string) (*storage.File, func(), error) {
	noop := func() {}
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, noop, err
	}
	return &storage.File{Name: fh.Filename, Body: f}, func() { _ = f.Close() }, nil
}

// handleListJobs returns every job.
//
// GET /api/jobs
func (s *Server) handleListJobs(c *gin.Context) {
	jobs, err := s.svc.ListJobs(c.Request.Context())
	if err != nil {
		respond.Error(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// GET /api/jobs/:id
func (s *Server) handleGetJob(c *gin.Context) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}
	job, err := s.svc.GetJob(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// handleApply submits an application with an optional resume.
//
// POST /api/applications
func (s *Server) handleApply(c *gin.Context) {
	var req applyRequest
	if err := c.ShouldBind(&req); err != nil {
		respond.BadRequest(c, "invalid request body")
		return
	}
	resume, closeFile, err := formFile(c, "resume")
	if err != nil {
		respond.BadRequest(c, "invalid resume upload")
		return
	}
	defer closeFile()

	app, err := s.svc.Apply(c.Request.Context(), middleware.UserID(c), service.ApplyInput{
		JobID:       parseJobID(req.JobID),
		CoverLetter: req.CoverLetter,
		Resume:      resume,
	})
	if err != nil {
		respond.Error(c, s.logger, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

// GET /api/applications/my
func (s *Server) handleMyApplications(c *gin.Context) {
	apps, err := s.svc.MyApplications(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respond.Error(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

// DELETE /api/applications/:id
func (s *Server) handleWithdraw(c *gin.Context) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}
	if err := s.svc.Withdraw(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		respond.Error(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Application withdrawn"})
}

// GET /api/saved-jobs
func (s *Server) handleSavedJobIDs(c *gin.Context) {
	ids, err := s.svc.SavedJobIDs(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respond.Error(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, ids)
}

// GET /api/saved-jobs/list?q=
func (s *Server) handleSavedJobs(c *gin.Context) {
	jobs, err := s.svc.SavedJobs(c.Request.Context(), middleware.UserID(c), c.Query("q"))
	if err != nil {
		respond.Error(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// POST /api/saved-jobs/:jobId
func (s *Server) handleSaveJob(c *gin.Context) {
	jobID, ok := respond.ID(c, "jobId")
	if !ok {
		return
	}
	if err := s.svc.SaveJob(c.Request.Context(), middleware.UserID(c), jobID); err != nil {
		respond.Error(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}

// DELETE /api/saved-jobs/:jobId
func (s *Server) handleUnsaveJob(c *gin.Context) {
	jobID, ok := respond.ID(c, "jobId")
	if !ok {
		return
	}
	if err := s.svc.UnsaveJob(c.Request.Context(), middleware.UserID(c), jobID); err != nil {
		respond.Error(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": false})
}

// handleReport flags a job with an optional proof file.
//
// POST /api/reports
func (s *Server) handleReport(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBind(&req); err != nil {
		respond.BadRequest(c, "invalid request body")
		return
	}
	proof, closeFile, err := formFile(c, "proof")
	if err != nil {
		respond.BadRequest(c, "invalid proof upload")
		return
	}
	defer closeFile()

	report, err := s.svc.Report(c.Request.Context(), middleware.UserID(c), service.ReportInput{
		JobID:  parseJobID(req.JobID),
		Reason: req.Reason,
		Proof:  proof,
	})
	if err != nil {
		respond.Error(c, s.logger, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}
