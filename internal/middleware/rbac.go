package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/campus-ris/ris-api/internal/models"
	appErrors "github.com/campus-ris/ris-api/pkg/errors"
	"github.com/campus-ris/ris-api/pkg/response"
)

func currentClaims(c *gin.Context) (*models.JWTClaims, bool) {
	claimsValue, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	claims, ok := claimsValue.(*models.JWTClaims)
	return claims, ok
}

// RequireKind restricts a route to the given account kinds.
func RequireKind(kinds ...models.AccountKind) gin.HandlerFunc {
	allowed := make(map[models.AccountKind]struct{}, len(kinds))
	for _, k := range kinds {
		allowed[k] = struct{}{}
	}
	return func(c *gin.Context) {
		claims, ok := currentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Kind]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireInstructorRole restricts a route to instructors holding the given
// capability. The check is set membership, never equality: an instructor who
// is also an adviser passes both gates.
func RequireInstructorRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if claims.Kind != models.KindInstructor || !claims.Roles.Has(role) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin restricts a route to admin accounts.
func RequireAdmin() gin.HandlerFunc {
	return RequireKind(models.KindAdmin)
}

// RequireSuperAdmin restricts a route to the super admin.
func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !claims.IsSuperAdmin() {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "super admin only"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequirePermission restricts a route to admins holding the permission. The
// super admin implicitly holds every permission.
func RequirePermission(perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !claims.IsAdmin() || !claims.HasPermission(perm) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
