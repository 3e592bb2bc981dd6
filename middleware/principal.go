package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"homechef-api/apperrors"
	"homechef-api/authz"
	"homechef-api/models"
)

const principalKey = "principal"

// ResolvePrincipal looks up the persisted user record for the verified
// identity and stores the resulting Principal in the request context.
// A verified identity without a user record is the registration race:
// surfaced as a transient 503, not an authorization failure, so the
// caller retries once user-record creation completes.
func ResolvePrincipal(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString("email")

		var user models.User
		if err := db.Where("email = ?", email).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				abortWithError(c, apperrors.ErrPrincipalNotFound)
				return
			}
			abortWithError(c, err)
			return
		}

		p := authz.Principal{
			ID:     user.ID,
			Email:  user.Email,
			Role:   user.Role,
			Status: user.Status,
		}
		if user.ChefID != nil {
			p.ChefID = *user.ChefID
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// GetPrincipal extracts the resolved Principal from context.
func GetPrincipal(c *gin.Context) authz.Principal {
	val, _ := c.Get(principalKey)
	p, _ := val.(authz.Principal)
	return p
}

// RequireChef gates the chef route group through the authorization guard.
// Admins pass as well.
func RequireChef() gin.HandlerFunc {
	return requireAction(authz.ActionChefAccess)
}

// RequireAdmin gates the admin route group through the authorization guard.
func RequireAdmin() gin.HandlerFunc {
	return requireAction(authz.ActionAdminAccess)
}

func requireAction(action authz.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authz.Authorize(GetPrincipal(c), action, authz.Target{}); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperrors.HTTPStatus(err), gin.H{
		"code":  apperrors.CodeOf(err),
		"error": err.Error(),
	})
}
