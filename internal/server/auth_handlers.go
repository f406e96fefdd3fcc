package server

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shopdesk-dev/shopdesk/internal/assert"
	"github.com/shopdesk-dev/shopdesk/internal/auth"
	"github.com/shopdesk-dev/shopdesk/internal/models"
	"github.com/shopdesk-dev/shopdesk/internal/tasks"
)

// SetupRequest represents the first-run setup request
type SetupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AdminDetail represents an admin as returned on the wire
type AdminDetail struct {
	ID          string     `json:"_id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	Access      string     `json:"access"`
	Permissions []string   `json:"permissions"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	LastLogin   *time.Time `json:"lastLogin,omitempty"`
}

// adminDetail maps the model to the wire form. The access field carries
// the raw role verbatim: normalization is the console's business.
func adminDetail(admin *models.AdminUser) *AdminDetail {
	permissions := []string(admin.Permissions)
	if permissions == nil {
		permissions = []string{}
	}
	return &AdminDetail{
		ID:          admin.ID,
		Email:       admin.Email,
		Name:        admin.Name,
		Role:        admin.Role,
		Access:      admin.Role,
		Permissions: permissions,
		IsActive:    admin.IsActive,
		CreatedAt:   admin.CreatedAt,
		UpdatedAt:   admin.UpdatedAt,
		LastLogin:   admin.LastLoginAt,
	}
}

// success wraps a payload in the response envelope
func success(data gin.H) gin.H {
	return gin.H{"status": "success", "data": data}
}

// failure builds an error envelope
func failure(message string) gin.H {
	return gin.H{"status": "error", "message": message}
}

// @Summary First-run setup
// @Description Creates the first superadmin (only works if no admins exist)
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SetupRequest true "Setup request"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/setup [post]
func (s *Server) setupFirstAdmin(c *gin.Context) {
	var req SetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, failure(err.Error()))
		return
	}

	// Check if any admins exist
	var count int64
	if err := s.db.Model(&models.AdminUser{}).Count(&count).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to count admins")
		c.JSON(http.StatusInternalServerError, failure("Internal server error"))
		return
	}

	if count > 0 {
		c.JSON(http.StatusConflict, failure("Setup already completed"))
		return
	}

	// Generate JWT secret (64 hex characters = 32 bytes of randomness)
	jwtSecretBytes := make([]byte, 32)
	if _, err := rand.Read(jwtSecretBytes); err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate JWT secret")
		c.JSON(http.StatusInternalServerError, failure("Failed to initialize system"))
		return
	}
	jwtSecret := hex.EncodeToString(jwtSecretBytes)
	assert.Length(jwtSecret, 64) // 64-char secret

	// Create Config singleton with JWT secret
	appConfig := &models.Config{
		JWTSecret:          jwtSecret,
		AuditRetentionDays: 90,
	}
	if err := s.db.Create(appConfig).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create config")
		c.JSON(http.StatusInternalServerError, failure("Failed to initialize system"))
		return
	}

	// Initialize JWT authentication with the generated secret
	auth.InitializeJWT(jwtSecret)

	// Hash password
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		c.JSON(http.StatusInternalServerError, failure("Failed to create admin"))
		return
	}

	// Create the first superadmin
	admin := &models.AdminUser{
		Email:        req.Email,
		PasswordHash: passwordHash,
		Name:         req.Name,
		Role:         "superadmin",
		Permissions:  models.PermissionList{},
		IsActive:     true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create superadmin")
		c.JSON(http.StatusInternalServerError, failure("Failed to create admin"))
		return
	}

	// Generate JWT token
	token, err := auth.GenerateToken(admin.ID, admin.Email, admin.Role)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate token")
		c.JSON(http.StatusInternalServerError, failure("Failed to generate token"))
		return
	}

	s.logger.Info().Str("admin_id", admin.ID).Str("email", admin.Email).Msg("First superadmin created")

	c.JSON(http.StatusOK, success(gin.H{
		"token": token,
		"admin": adminDetail(admin),
	}))
}

// @Summary Login
// @Description Authenticate with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/auth/login [post]
func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, failure(err.Error()))
		return
	}

	// Find admin by email
	var admin models.AdminUser
	if err := s.db.Where("email = ?", req.Email).First(&admin).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusUnauthorized, failure("Invalid email or password"))
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find admin")
		c.JSON(http.StatusInternalServerError, failure("Internal server error"))
		return
	}

	// Verify password
	if err := auth.VerifyPassword(req.Password, admin.PasswordHash); err != nil {
		c.JSON(http.StatusUnauthorized, failure("Invalid email or password"))
		return
	}

	if !admin.IsActive {
		c.JSON(http.StatusForbidden, failure("Account deactivated"))
		return
	}

	// Generate JWT token
	token, err := auth.GenerateToken(admin.ID, admin.Email, admin.Role)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate token")
		c.JSON(http.StatusInternalServerError, failure("Failed to generate token"))
		return
	}

	// Record the login off the request path
	if task, err := tasks.NewRecordLoginTask(admin.ID, admin.Email, time.Now().UTC()); err == nil {
		if _, err := s.asynqClient.Enqueue(task); err != nil {
			s.logger.Warn().Err(err).Str("admin_id", admin.ID).Msg("Failed to enqueue login record")
		}
	}

	s.logger.Info().Str("admin_id", admin.ID).Str("email", admin.Email).Msg("Admin logged in")

	c.JSON(http.StatusOK, success(gin.H{
		"token": token,
		"admin": adminDetail(&admin),
	}))
}

// @Summary Get current admin
// @Description Get information about the currently authenticated admin
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/auth/me [get]
func (s *Server) getCurrentAdmin(c *gin.Context) {
	principal, exists := GetPrincipal(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, failure("Unauthorized"))
		return
	}

	c.JSON(http.StatusOK, success(gin.H{
		"admin": adminDetail(principal.Admin),
	}))
}
