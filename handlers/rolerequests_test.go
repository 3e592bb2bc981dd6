package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homechef-api/models"
)

func createRoleRequest(t *testing.T, env *testEnv, user *models.User, role string) (uint, int, errorBody) {
	t.Helper()
	w := env.do(t, http.MethodPost, "/api/role-requests", env.token(t, user), gin.H{"requested_role": role})
	if w.Code != http.StatusCreated {
		return 0, w.Code, decodeError(t, w)
	}
	var resp struct {
		Request models.RoleRequest `json:"request"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Request.ID, w.Code, errorBody{}
}

func TestRoleRequestPromotionFlow(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "Admin", "admin@example.com", models.RoleAdmin, models.StatusActive, "")
	user := env.createUser(t, "Aspiring Chef", "user@example.com", models.RoleUser, models.StatusActive, "")

	reqID, code, _ := createRoleRequest(t, env, user, "chef")
	require.Equal(t, http.StatusCreated, code)

	// a second request for the same role while one is pending
	_, code, body := createRoleRequest(t, env, user, "chef")
	require.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "DUPLICATE_REQUEST", body.Code)

	// a request for a different role is fine alongside
	_, code, _ = createRoleRequest(t, env, user, "admin")
	assert.Equal(t, http.StatusCreated, code)

	w := env.do(t, http.MethodPut, fmt.Sprintf("/api/admin/role-requests/%d/approve", reqID),
		env.token(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// approval promotes the user and assigns a chef id, atomically
	var promoted models.User
	require.NoError(t, env.db.First(&promoted, user.ID).Error)
	assert.Equal(t, models.RoleChef, promoted.Role)
	require.NotNil(t, promoted.ChefID)
	assert.NotEmpty(t, *promoted.ChefID)

	// the request is now terminal and immutable
	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/admin/role-requests/%d/approve", reqID),
		env.token(t, admin), nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "REQUEST_ALREADY_FINALIZED", decodeError(t, w).Code)

	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/admin/role-requests/%d/reject", reqID),
		env.token(t, admin), nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "REQUEST_ALREADY_FINALIZED", decodeError(t, w).Code)

	// asking for chef again fails on role, not on duplication
	_, code, body = createRoleRequest(t, env, user, "chef")
	require.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "ROLE_ALREADY_HELD", body.Code)
}

func TestRoleRequestRejection(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "Admin", "admin@example.com", models.RoleAdmin, models.StatusActive, "")
	user := env.createUser(t, "User", "user@example.com", models.RoleUser, models.StatusActive, "")

	reqID, code, _ := createRoleRequest(t, env, user, "chef")
	require.Equal(t, http.StatusCreated, code)

	w := env.do(t, http.MethodPut, fmt.Sprintf("/api/admin/role-requests/%d/reject", reqID),
		env.token(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// rejection never touches the user's role
	var unchanged models.User
	require.NoError(t, env.db.First(&unchanged, user.ID).Error)
	assert.Equal(t, models.RoleUser, unchanged.Role)
	assert.Nil(t, unchanged.ChefID)

	// after rejection a fresh request is allowed — only pending blocks
	_, code, _ = createRoleRequest(t, env, user, "chef")
	assert.Equal(t, http.StatusCreated, code)
}

func TestRoleRequestFinalizationIsAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "User", "user@example.com", models.RoleUser, models.StatusActive, "")
	chef := env.createUser(t, "Chef", "chef@example.com", models.RoleChef, models.StatusActive, "chef-1")

	reqID, code, _ := createRoleRequest(t, env, user, "chef")
	require.Equal(t, http.StatusCreated, code)

	for _, actor := range []*models.User{user, chef} {
		w := env.do(t, http.MethodPut, fmt.Sprintf("/api/admin/role-requests/%d/approve", reqID),
			env.token(t, actor), nil)
		require.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "FORBIDDEN", decodeError(t, w).Code)
	}
}

func TestChefKeepsChefIDWhenPromotedToAdmin(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "Admin", "admin@example.com", models.RoleAdmin, models.StatusActive, "")
	chef := env.createUser(t, "Chef", "chef@example.com", models.RoleChef, models.StatusActive, "chef-keep")

	reqID, code, _ := createRoleRequest(t, env, chef, "admin")
	require.Equal(t, http.StatusCreated, code)

	w := env.do(t, http.MethodPut, fmt.Sprintf("/api/admin/role-requests/%d/approve", reqID),
		env.token(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var promoted models.User
	require.NoError(t, env.db.First(&promoted, chef.ID).Error)
	assert.Equal(t, models.RoleAdmin, promoted.Role)
	require.NotNil(t, promoted.ChefID)
	assert.Equal(t, "chef-keep", *promoted.ChefID)
}
