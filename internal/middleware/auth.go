package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ideaboard/internal/models"
)

// CurrentUserKey is the gin context key holding the *models.User resolved
// from the session, when there is one.
const CurrentUserKey = "current_user"

// LoadUser resolves the session's user_id to a user record and stores it in
// the request context. Anonymous requests pass through untouched.
func LoadUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get("user_id")
		if userID != nil {
			var user models.User
			if err := db.First(&user, userID).Error; err == nil {
				c.Set(CurrentUserKey, &user)
			}
		}
		c.Next()
	}
}

// CurrentUser returns the session user, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	if u, exists := c.Get(CurrentUserKey); exists {
		return u.(*models.User)
	}
	return nil
}

// VoterIdentity is the stable key deduplicating one vote per idea: the user
// id when authenticated, the client network address otherwise. The prefixes
// keep the two namespaces disjoint.
func VoterIdentity(c *gin.Context) string {
	if user := CurrentUser(c); user != nil {
		return fmt.Sprintf("user:%d", user.ID)
	}
	return "ip:" + c.ClientIP()
}

// RoleAllowed is the single capability check every privileged route goes
// through: does role appear in required?
func RoleAllowed(role string, required ...string) bool {
	for _, r := range required {
		if role == r {
			return true
		}
	}
	return false
}

// RequireRole gates a route group on RoleAllowed. Every request lacking a
// sufficient role is rejected with 403, anonymous ones included: the role
// check is a permission failure, not an authentication challenge.
func RequireRole(required ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !RoleAllowed(user.Role, required...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
			return
		}
		c.Next()
	}
}
