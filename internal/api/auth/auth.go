// Package auth serves registration, login and profile endpoints.
package auth

import (
	"log/slog"
	"net/http"

	"github.com/Aman-1206/Joblink/internal/api/middleware"
	"github.com/Aman-1206/Joblink/internal/api/respond"
	"github.com/Aman-1206/Joblink/internal/model"
	"github.com/Aman-1206/Joblink/internal/pkg/storage"
	"github.com/Aman-1206/Joblink/internal/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
)

// Handler serves /api/auth.
type Handler struct {
	svc         *service.Service
	logger      *slog.Logger
	google      *oauth2.Config
	userInfoURL string
	frontendURL string
}

// NewHandler creates an auth Handler. Google login stays disabled until
// WithGoogle is called.
func NewHandler(svc *service.Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type sendCodeRequest struct {
	Email       string `json:"email"`
	Role        string `json:"role"`
	FullName    string `json:"fullName"`
	Phone       string `json:"phone"`
	CompanyName string `json:"companyName"`
	GSTNumber   string `json:"gstNumber"`
}

type verifyRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	FullName    string `json:"fullName"`
	Phone       string `json:"phone"`
	CompanyName string `json:"companyName"`
	GSTNumber   string `json:"gstNumber"`
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"fullName"`
	Phone       string `json:"phone"`
	CompanyName string `json:"companyName"`
	GSTNumber   string `json:"gstNumber"`
}

func (r registerRequest) profile() service.Profile {
	return service.Profile{FullName: r.FullName, Phone: r.Phone, CompanyName: r.CompanyName, GSTNumber: r.GSTNumber}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type profileRequest struct {
	FullName *string `json:"fullName"`
	Phone    *string `json:"phone"`
}

type authResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// SendCode emails a registration code.
//
// POST /api/auth/send-otp
func (h *Handler) SendCode(c *gin.Context) {
	var req sendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "invalid request body")
		return
	}
	var profile *service.Profile
	if req.FullName != "" || req.Phone != "" || req.CompanyName != "" || req.GSTNumber != "" {
		profile = &service.Profile{FullName: req.FullName, Phone: req.Phone, CompanyName: req.CompanyName, GSTNumber: req.GSTNumber}
	}
	if err := h.svc.RequestCode(c.Request.Context(), req.Email, req.Role, profile); err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP sent to your email"})
}

// VerifyAndRegister completes a code-verified registration.
//
// POST /api/auth/verify-otp-register
func (h *Handler) VerifyAndRegister(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "invalid request body")
		return
	}
	res, err := h.svc.VerifyAndRegister(c.Request.Context(), service.VerifyInput{
		Email:    req.Email,
		Code:     req.OTP,
		Password: req.Password,
		Role:     req.Role,
		Profile:  service.Profile{FullName: req.FullName, Phone: req.Phone, CompanyName: req.CompanyName, GSTNumber: req.GSTNumber},
	})
	h.writeAuth(c, res, err)
}

// RegisterStudent registers a student without a code.
//
// POST /api/auth/register/student
func (h *Handler) RegisterStudent(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "invalid request body")
		return
	}
	res, err := h.svc.RegisterStudent(c.Request.Context(), req.Email, req.Password, req.profile())
	h.writeAuth(c, res, err)
}

// RegisterHR registers an HR account without a code.
//
// POST /api/auth/register/hr
func (h *Handler) RegisterHR(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "invalid request body")
		return
	}
	res, err := h.svc.RegisterHR(c.Request.Context(), req.Email, req.Password, req.profile())
	h.writeAuth(c, res, err)
}

func (h *Handler) writeAuth(c *gin.Context, res *service.AuthResult, err error) {
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	if res.Pending {
		c.JSON(http.StatusAccepted, gin.H{"message": "Your request is pending approval by admins.", "pending": true})
		return
	}
	c.JSON(http.StatusOK, authResponse{User: res.User, Token: res.Token})
}

// Login checks credentials and returns a token.
//
// POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "invalid request body")
		return
	}
	res, err := h.svc.Login(c.Request.Context(), req.Email, req.Password, req.Role)
	h.writeAuth(c, res, err)
}

// Me returns the caller's account.
//
// GET /api/auth/me
func (h *Handler) Me(c *gin.Context) {
	u, err := h.svc.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// UpdateProfile changes the caller's name or phone.
//
// PUT /api/auth/profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "invalid request body")
		return
	}
	u, err := h.svc.UpdateProfile(c.Request.Context(), middleware.UserID(c), req.FullName, req.Phone)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// UploadPhoto replaces the caller's profile photo.
//
// POST /api/auth/profile/photo (multipart field "photo")
func (h *Handler) UploadPhoto(c *gin.Context) {
	fh, err := c.FormFile("photo")
	if err != nil {
		respond.BadRequest(c, "No file uploaded")
		return
	}
	f, err := fh.Open()
	if err != nil {
		respond.BadRequest(c, "No file uploaded")
		return
	}
	defer f.Close()

	u, err := h.svc.SetProfilePhoto(c.Request.Context(), middleware.UserID(c), storage.File{Name: fh.Filename, Body: f})
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
