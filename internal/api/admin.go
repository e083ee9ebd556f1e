package api

import (
	"net/http"

	"github.com/Aman-1206/Joblink/internal/api/respond"

	"github.com/gin-gonic/gin"
)

type addDomainRequest struct {
	Domain      string `json:"domain"`
	CompanyName string `json:"companyName"`
}

type addAdminRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

// GET /api/admin/pending-hr?q=
func (s *Server) handleListPending(c *gin.Context) {
	rows, err := s.svc.ListPending(c.Request.Context(), c.Query("q"))
	if err != nil {
		respond.Error(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// POST /api/admin/approve-hr/:id
func (s *Server) handleApprove(c *gin.Context) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}
	if _, err := s.svc.ApprovePending(c.Request.Context(), id); err != nil {
		respond.Error(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "HR approved successfully"})
}

// POST /api/admin/reject-hr/:id
func (s *Server) handleReject(c *gin.Context) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}
	if err := s.svc.RejectPending(c.Request.Context(), id); err != nil {
		respond.Error(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "HR request rejected"})
}

// POST /api/admin/verify-gst/:id
func (s *Server) handleVerifyGST(c *gin.Context) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}
	if err := s.svc.VerifyGST(c.Request.Context(), id); err != nil {
		respond.Error(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "GST verified"})
}

// GET /api/admin/company-domains
func (s *Server) handleListDomains(c *gin.Context) {
	rows, err := s.svc.ListDomains(c.Request.Context())
	if err != nil {
		respond.Error(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// POST /api/admin/company-domains
func (s *Server) handleAddDomain(c *gin.Context) {
	var req addDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "invalid request body")
		return
	}
	d, err := s.svc.AddDomain(c.Request.Context(), req.Domain, req.CompanyName)
	if err != nil {
		respond.Error(c, s.logger, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

// GET /api/admin/analytics
func (s *Server) handleAnalytics(c *gin.Context) {
	a, err := s.svc.Analytics(c.Request.Context())
	if err != nil {
		respond.Error(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// GET /api/admin/jobs?q=
func (s *Server) handleAdminJobs(c *gin.Context) {
	rows, err := s.svc.ListAllJobs(c.Request.Context(), c.Query("q"))
	if err != nil {
		respond.Error(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// DELETE /api/admin/jobs/:id
func (s *Server) handleAdminDeleteJob(c *gin.Context) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}
	if err := s.svc.DeleteJob(c.Request.Context(), id, 0); err != nil {
		respond.Error(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Job deleted"})
}

// GET /api/admin/reports
func (s *Server) handleListReports(c *gin.Context) {
	rows, err := s.svc.ListReports(c.Request.Context())
	if err != nil {
		respond.Error(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// DELETE /api/admin/reports/:id
func (s *Server) handleDismissReport(c *gin.Context) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}
	if err := s.svc.DismissReport(c.Request.Context(), id); err != nil {
		respond.Error(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Report dismissed"})
}

// GET /api/admin/hrs?q=
func (s *Server) handleListHRs(c *gin.Context) {
	rows, err := s.svc.ListHRs(c.Request.Context(), c.Query("q"))
	if err != nil {
		respond.Error(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GET /api/admin/students?q=
func (s *Server) handleListStudents(c *gin.Context) {
	rows, err := s.svc.ListStudents(c.Request.Context(), c.Query("q"))
	if err != nil {
		respond.Error(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GET /api/admin/companies?q=
func (s *Server) handleListCompanies(c *gin.Context) {
	rows, err := s.svc.ListCompanies(c.Request.Context(), c.Query("q"))
	if err != nil {
		respond.Error(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// POST /api/admin/add-admin
func (s *Server) handleAddAdmin(c *gin.Context) {
	var req addAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "invalid request body")
		return
	}
	u, err := s.svc.AddAdmin(c.Request.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		respond.Error(c, s.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Admin added", "user": u})
}
