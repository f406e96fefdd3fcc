package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shopdesk-dev/shopdesk/internal/auth"
	"github.com/shopdesk-dev/shopdesk/internal/models"
)

// CreateAdminRequest represents a request to create a new admin
type CreateAdminRequest struct {
	Email       string   `json:"email" binding:"required,email"`
	Name        string   `json:"name" binding:"required"`
	Password    string   `json:"password" binding:"required"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// UpdateAdminRequest is a partial admin update; nil fields are untouched
type UpdateAdminRequest struct {
	Email       *string   `json:"email" binding:"omitempty,email"`
	Name        *string   `json:"name"`
	Role        *string   `json:"role"`
	Permissions *[]string `json:"permissions"`
	IsActive    *bool     `json:"isActive"`
}

// @Summary List admins
// @Description List all admin accounts
// @Tags admins
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /api/admins [get]
func (s *Server) listAdmins(c *gin.Context) {
	var admins []models.AdminUser
	if err := s.db.Order("created_at DESC").Find(&admins).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list admins")
		c.JSON(http.StatusInternalServerError, failure("Internal server error"))
		return
	}

	details := make([]*AdminDetail, len(admins))
	for i := range admins {
		details[i] = adminDetail(&admins[i])
	}

	c.JSON(http.StatusOK, success(gin.H{"admins": details}))
}

// @Summary Create admin
// @Description Create a new admin account
// @Tags admins
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateAdminRequest true "Create admin request"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /api/admins [post]
func (s *Server) createAdmin(c *gin.Context) {
	var req CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, failure(err.Error()))
		return
	}

	if err := s.validator.Var(req.Role, "adminrole"); err != nil {
		c.JSON(http.StatusBadRequest, failure("Unknown role"))
		return
	}

	// Hash the provided password
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		c.JSON(http.StatusInternalServerError, failure("Failed to create admin"))
		return
	}

	admin := &models.AdminUser{
		Email:        req.Email,
		PasswordHash: passwordHash,
		Name:         req.Name,
		Role:         req.Role,
		Permissions:  models.PermissionList(req.Permissions),
		IsActive:     true,
	}
	if admin.Permissions == nil {
		admin.Permissions = models.PermissionList{}
	}

	if err := s.db.Create(admin).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create admin")
		c.JSON(http.StatusInternalServerError, failure("Failed to create admin"))
		return
	}

	principal, _ := GetPrincipal(c)
	s.logger.Info().
		Str("admin_id", admin.ID).
		Str("email", admin.Email).
		Str("created_by", principal.Admin.ID).
		Msg("Admin created")

	c.JSON(http.StatusCreated, success(gin.H{"admin": adminDetail(admin)}))
}

// @Summary Update admin
// @Description Partially update an admin account; absent fields are left unchanged
// @Tags admins
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Admin ID"
// @Param request body UpdateAdminRequest true "Update admin request"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/admins/{id} [patch]
func (s *Server) updateAdmin(c *gin.Context) {
	adminID := c.Param("id")

	var req UpdateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, failure(err.Error()))
		return
	}

	if req.Role != nil {
		if err := s.validator.Var(*req.Role, "adminrole"); err != nil {
			c.JSON(http.StatusBadRequest, failure("Unknown role"))
			return
		}
	}

	var admin models.AdminUser
	if err := s.db.Where("id = ?", adminID).First(&admin).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, failure("Admin not found"))
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find admin")
		c.JSON(http.StatusInternalServerError, failure("Internal server error"))
		return
	}

	// Shallow merge of provided fields only
	if req.Email != nil {
		admin.Email = *req.Email
	}
	if req.Name != nil {
		admin.Name = *req.Name
	}
	if req.Role != nil {
		admin.Role = *req.Role
	}
	if req.Permissions != nil {
		admin.Permissions = models.PermissionList(*req.Permissions)
	}
	if req.IsActive != nil {
		admin.IsActive = *req.IsActive
	}

	if err := s.db.Save(&admin).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to update admin")
		c.JSON(http.StatusInternalServerError, failure("Failed to update admin"))
		return
	}

	principal, _ := GetPrincipal(c)
	s.logger.Info().
		Str("admin_id", admin.ID).
		Str("updated_by", principal.Admin.ID).
		Msg("Admin updated")

	c.JSON(http.StatusOK, success(gin.H{"admin": adminDetail(&admin)}))
}

// @Summary Delete admin
// @Description Delete an admin account (cannot delete self)
// @Tags admins
// @Produce json
// @Security BearerAuth
// @Param id path string true "Admin ID"
// @Success 204
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/admins/{id} [delete]
func (s *Server) deleteAdmin(c *gin.Context) {
	adminID := c.Param("id")

	principal, _ := GetPrincipal(c)

	// Prevent deleting self
	if adminID == principal.Admin.ID {
		c.JSON(http.StatusBadRequest, failure("Cannot delete yourself"))
		return
	}

	var admin models.AdminUser
	if err := s.db.Where("id = ?", adminID).First(&admin).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, failure("Admin not found"))
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find admin")
		c.JSON(http.StatusInternalServerError, failure("Internal server error"))
		return
	}

	if err := s.db.Delete(&admin).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete admin")
		c.JSON(http.StatusInternalServerError, failure("Failed to delete admin"))
		return
	}

	s.logger.Info().
		Str("admin_id", adminID).
		Str("deleted_by", principal.Admin.ID).
		Msg("Admin deleted")

	c.Status(http.StatusNoContent)
}

// @Summary List login audit
// @Description List recent login audit entries
// @Tags audit
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /api/audit/logins [get]
func (s *Server) listLoginAudit(c *gin.Context) {
	var entries []models.LoginAudit
	if err := s.db.Order("login_at DESC").Limit(200).Find(&entries).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list login audit")
		c.JSON(http.StatusInternalServerError, failure("Internal server error"))
		return
	}

	c.JSON(http.StatusOK, success(gin.H{"logins": entries}))
}
