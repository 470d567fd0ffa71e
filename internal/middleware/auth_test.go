package middleware_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"ideaboard/internal/middleware"
	"ideaboard/internal/models"
)

func TestRoleAllowed(t *testing.T) {
	moderation := []string{models.RoleModerator, models.RoleContentManager, models.RoleAdmin}

	assert.False(t, middleware.RoleAllowed(models.RoleUser, moderation...))
	assert.True(t, middleware.RoleAllowed(models.RoleModerator, moderation...))
	assert.True(t, middleware.RoleAllowed(models.RoleContentManager, moderation...))
	assert.True(t, middleware.RoleAllowed(models.RoleAdmin, moderation...))

	assert.False(t, middleware.RoleAllowed(models.RoleModerator, models.RoleAdmin))
	assert.True(t, middleware.RoleAllowed(models.RoleAdmin, models.RoleAdmin))
	assert.False(t, middleware.RoleAllowed("", moderation...))
}

func TestVoterIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/api/ideas/1/vote", nil)
	c.Request.RemoteAddr = "203.0.113.9:1234"
	assert.Equal(t, "ip:203.0.113.9", middleware.VoterIdentity(c))

	c.Set(middleware.CurrentUserKey, &models.User{ID: 42})
	assert.Equal(t, "user:42", middleware.VoterIdentity(c))
}
