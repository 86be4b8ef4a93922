package handlers_test

import (
	"net/http"
	"testing"

	"github.com/dom/personal-blog/internal/domain"
	"github.com/dom/personal-blog/internal/service"
	"github.com/dom/personal-blog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminHandler_Access(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, userToken := testutil.NewUserBuilder().BuildAndLogin(t, ts)
	_, adminToken := testutil.NewUserBuilder().WithRole(domain.RoleAdmin).BuildAndLogin(t, ts)
	_, namedToken := testutil.NewUserBuilder().WithUsername(ts.Config.SuperUsername).BuildAndLogin(t, ts)

	tests := []struct {
		name           string
		token          string
		expectedStatus int
	}{
		{name: "anonymous", token: "", expectedStatus: http.StatusForbidden},
		{name: "unknown token", token: "not-a-session", expectedStatus: http.StatusForbidden},
		{name: "regular user", token: userToken, expectedStatus: http.StatusForbidden},
		{name: "admin role", token: adminToken, expectedStatus: http.StatusOK},
		{name: "configured super username", token: namedToken, expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := testutil.Do(t, http.MethodGet, ts.APIURL("/admin/users"), nil, tt.token)
			testutil.AssertStatusCode(t, resp, tt.expectedStatus)
			if tt.expectedStatus == http.StatusForbidden {
				testutil.AssertErrorResponse(t, resp, http.StatusForbidden, "Admin access required")
			}
		})
	}
}

func TestAdminHandler_DemotedAdminLosesAccess(t *testing.T) {
	ts := testutil.NewTestServer(t)

	admin, adminToken := testutil.NewUserBuilder().WithRole(domain.RoleAdmin).BuildAndLogin(t, ts)
	_, superToken := testutil.NewUserBuilder().WithRole(domain.RoleSuperAdmin).BuildAndLogin(t, ts)

	testutil.AssertStatusCode(t, testutil.Do(t, http.MethodGet, ts.APIURL("/admin/posts"), nil, adminToken), http.StatusOK)

	resp := testutil.Do(t, http.MethodPut, ts.APIURL("/admin/users"), map[string]interface{}{
		"userId": admin.ID.String(), "role": "user",
	}, superToken)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	// The same session is still valid, but no longer passes the admin check.
	testutil.AssertStatusCode(t, testutil.Do(t, http.MethodGet, ts.APIURL("/auth/me"), nil, adminToken), http.StatusOK)
	resp = testutil.Do(t, http.MethodGet, ts.APIURL("/admin/posts"), nil, adminToken)
	testutil.AssertErrorResponse(t, resp, http.StatusForbidden, "Admin access required")
}

func TestAdminHandler_ManageUsers(t *testing.T) {
	ts := testutil.NewTestServer(t)

	admin, adminToken := testutil.NewUserBuilder().WithRole(domain.RoleAdmin).BuildAndLogin(t, ts)
	_, superToken := testutil.NewUserBuilder().WithRole(domain.RoleSuperAdmin).BuildAndLogin(t, ts)
	target, targetToken := testutil.NewUserBuilder().BuildAndLogin(t, ts)

	resp := testutil.Do(t, http.MethodGet, ts.APIURL("/admin/users"), nil, adminToken)
	var list struct {
		Users []*domain.User `json:"users"`
	}
	testutil.AssertJSONResponse(t, resp, &list)
	assert.Len(t, list.Users, 3)

	update := func(token string, body map[string]interface{}) *http.Response {
		return testutil.Do(t, http.MethodPut, ts.APIURL("/admin/users"), body, token)
	}

	testutil.AssertStatusCode(t, update(adminToken, map[string]interface{}{"userId": "bad", "isActive": false}), http.StatusBadRequest)
	testutil.AssertStatusCode(t, update(adminToken, map[string]interface{}{"userId": admin.ID.String(), "isActive": false}), http.StatusBadRequest)
	testutil.AssertStatusCode(t, update(adminToken, map[string]interface{}{"userId": target.ID.String(), "role": "admin"}), http.StatusForbidden)
	testutil.AssertStatusCode(t, update(superToken, map[string]interface{}{"userId": target.ID.String(), "role": "super_admin"}), http.StatusBadRequest)

	resp = update(adminToken, map[string]interface{}{"userId": target.ID.String(), "isActive": false})
	var updated struct {
		User *domain.User `json:"user"`
	}
	testutil.AssertJSONResponse(t, resp, &updated)
	assert.False(t, updated.User.IsActive)

	// Deactivation revokes the user's existing session.
	testutil.AssertStatusCode(t, testutil.Do(t, http.MethodGet, ts.APIURL("/auth/me"), nil, targetToken), http.StatusUnauthorized)

	del := ts.APIURL("/admin/users?userId=" + target.ID.String())
	testutil.AssertStatusCode(t, testutil.Do(t, http.MethodDelete, del, nil, adminToken), http.StatusForbidden)
	testutil.AssertStatusCode(t, testutil.Do(t, http.MethodDelete, del, nil, superToken), http.StatusOK)
	testutil.AssertStatusCode(t, testutil.Do(t, http.MethodDelete, del, nil, superToken), http.StatusNotFound)
}

func TestAdminHandler_Posts(t *testing.T) {
	ts := testutil.NewTestServer(t)

	author, _ := testutil.NewUserBuilder().BuildAndLogin(t, ts)
	_, adminToken := testutil.NewUserBuilder().WithRole(domain.RoleAdmin).BuildAndLogin(t, ts)
	post := testutil.NewPostBuilder().WithSlug("admin-view").Build(t, ts.DB.DB, author)

	resp := testutil.Do(t, http.MethodGet, ts.APIURL("/admin/posts"), nil, adminToken)
	var list struct {
		Posts []*service.AdminPost `json:"posts"`
	}
	testutil.AssertJSONResponse(t, resp, &list)
	require.Len(t, list.Posts, 1)
	assert.Equal(t, "admin-view", list.Posts[0].Slug)
	require.NotNil(t, list.Posts[0].Stats)

	resp = testutil.Do(t, http.MethodPost, ts.APIURL("/admin/sync-comments"), nil, adminToken)
	var result service.SyncResult
	testutil.AssertJSONResponse(t, resp, &result)
	assert.Equal(t, service.SyncResult{}, result)

	del := ts.APIURL("/admin/posts?id=" + post.ID.String())
	testutil.AssertStatusCode(t, testutil.Do(t, http.MethodDelete, del, nil, adminToken), http.StatusOK)
	testutil.AssertStatusCode(t, testutil.Do(t, http.MethodDelete, del, nil, adminToken), http.StatusNotFound)
	testutil.AssertStatusCode(t, testutil.Do(t, http.MethodDelete, ts.APIURL("/admin/posts?id=zzz"), nil, adminToken), http.StatusBadRequest)
}
