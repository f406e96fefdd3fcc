package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/shopdesk-dev/shopdesk/internal/access"
	"github.com/shopdesk-dev/shopdesk/internal/auth"
	"github.com/shopdesk-dev/shopdesk/internal/models"
	"github.com/shopdesk-dev/shopdesk/internal/session"
)

const (
	bearerPrefix = "Bearer "
)

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthFormat = errors.New("invalid authorization header format")
	ErrEmptyToken        = errors.New("empty token")
	ErrInvalidToken      = errors.New("invalid token")
	ErrAdminNotFound     = errors.New("admin not found")
	ErrAdminInactive     = errors.New("admin deactivated")
)

// Principal is the authenticated request context: the admin record plus
// the capability set derived for this request. Capabilities are computed
// per request, never cached across them.
type Principal struct {
	Admin        *models.AdminUser
	Capabilities access.CapabilitySet
}

func setPrincipal(c *gin.Context, p *Principal) {
	c.Set("principal", p)
}

// GetPrincipal returns the authenticated principal for the request
func GetPrincipal(c *gin.Context) (*Principal, bool) {
	value, exists := c.Get("principal")
	if !exists {
		return nil, false
	}

	principal, ok := value.(*Principal)
	return principal, ok
}

func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}

	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidAuthFormat
	}

	token := strings.TrimPrefix(authHeader, bearerPrefix)
	if token == "" {
		return "", ErrEmptyToken
	}

	return token, nil
}

func respondWithError(c *gin.Context, log zerolog.Logger, statusCode int, err error, message string) {
	log.Warn().Err(err).Msg(message)
	c.JSON(statusCode, gin.H{"status": "error", "message": message})
	c.Abort()
}

// JWTAuthMiddleware validates bearer tokens and loads the admin principal
func JWTAuthMiddleware(db *gorm.DB, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Extract token from Authorization header
		authHeader := c.GetHeader("Authorization")
		token, err := extractBearerToken(authHeader)
		if err != nil {
			var message string
			switch err {
			case ErrMissingAuthHeader:
				message = "Missing authorization header"
			case ErrInvalidAuthFormat:
				message = "Invalid authorization header format"
			case ErrEmptyToken:
				message = "Empty token"
			}
			respondWithError(c, log, http.StatusUnauthorized, err, message)
			return
		}

		// Validate JWT token
		claims, err := auth.ValidateToken(token)
		if err != nil {
			log.Error().Err(err).Msg("Failed to validate JWT token")
			respondWithError(c, log, http.StatusUnauthorized, ErrInvalidToken, "Invalid or expired token")
			return
		}

		// Verify the admin still exists and is active
		var admin models.AdminUser
		if err := db.Where("id = ?", claims.AdminID).First(&admin).Error; err != nil {
			log.Error().Err(err).Str("admin_id", claims.AdminID).Msg("Admin not found")
			respondWithError(c, log, http.StatusUnauthorized, ErrAdminNotFound, "Admin not found")
			return
		}
		if !admin.IsActive {
			respondWithError(c, log, http.StatusForbidden, ErrAdminInactive, "Account deactivated")
			return
		}

		// Derive the capability set for this request
		eu, _ := session.Resolve(&admin, nil)
		setPrincipal(c, &Principal{
			Admin:        &admin,
			Capabilities: access.Derive(&eu),
		})

		c.Next()
	}
}

// RequireCapability gates a route group on one derived capability
func RequireCapability(log zerolog.Logger, capability access.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, exists := GetPrincipal(c)
		if !exists {
			respondWithError(c, log, http.StatusUnauthorized, errors.New("no principal"), "Unauthorized")
			return
		}

		if !principal.Capabilities.Has(capability) {
			log.Warn().
				Str("admin_id", principal.Admin.ID).
				Str("capability", string(capability)).
				Msg("Capability denied")
			respondWithError(c, log, http.StatusForbidden, errors.New("capability denied"), "Insufficient permissions")
			return
		}

		c.Next()
	}
}
