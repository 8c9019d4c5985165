package handlers_test

import (
	"net/http"
	"testing"

	"github.com/evan/item-vault/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userBody struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	IsActive    bool    `json:"is_active"`
	IsSuperuser bool    `json:"is_superuser"`
	FullName    *string `json:"full_name"`
}

type usersBody struct {
	Data  []userBody `json:"data"`
	Count int64      `json:"count"`
}

func TestUserHandler_Signup(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name           string
		request        map[string]string
		setup          func()
		expectedStatus int
	}{
		{
			name: "successful signup",
			request: map[string]string{
				"email":    "new@example.com",
				"password": "password123",
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "duplicate email",
			request: map[string]string{
				"email":    "taken@example.com",
				"password": "password123",
			},
			setup: func() {
				testutil.NewUserBuilder().WithEmail("taken@example.com").Build(t, ts.DB.DB)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "invalid email",
			request: map[string]string{
				"email":    "not-an-email",
				"password": "password123",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "password too short",
			request: map[string]string{
				"email":    "short@example.com",
				"password": "tiny",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "password too long",
			request: map[string]string{
				"email":    "long@example.com",
				"password": "0123456789012345678901234567890123456789x",
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts.DB.Truncate(t)

			if tt.setup != nil {
				tt.setup()
			}

			resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/users/signup"), "", tt.request)
			defer resp.Body.Close()

			testutil.AssertStatusCode(t, resp, tt.expectedStatus)

			if tt.expectedStatus == http.StatusOK {
				var body userBody
				testutil.AssertJSONResponse(t, resp, &body)
				assert.Equal(t, tt.request["email"], body.Email)
				assert.True(t, body.IsActive)
				assert.False(t, body.IsSuperuser)

				// Signed-up users can log in straight away.
				testutil.Login(t, ts, tt.request["email"], tt.request["password"])
			}
		})
	}
}

func TestUserHandler_MeFlows(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, password := testutil.NewUserBuilder().
		WithEmail("me@example.com").
		WithFullName("Original Name").
		Build(t, ts.DB.DB)
	token := testutil.Login(t, ts, user.Email, password)

	t.Run("read self", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodGet, ts.APIURL("/users/me"), token, nil)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)
		var body userBody
		testutil.AssertJSONResponse(t, resp, &body)
		assert.Equal(t, user.ID.String(), body.ID)
		require.NotNil(t, body.FullName)
		assert.Equal(t, "Original Name", *body.FullName)
	})

	t.Run("update full name", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodPatch, ts.APIURL("/users/me"), token, map[string]string{
			"full_name": "Updated Name",
		})
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)
		var body userBody
		testutil.AssertJSONResponse(t, resp, &body)
		require.NotNil(t, body.FullName)
		assert.Equal(t, "Updated Name", *body.FullName)
	})

	t.Run("update email to a taken one", func(t *testing.T) {
		testutil.NewUserBuilder().WithEmail("squatter@example.com").Build(t, ts.DB.DB)

		resp := testutil.DoJSON(t, http.MethodPatch, ts.APIURL("/users/me"), token, map[string]string{
			"email": "squatter@example.com",
		})
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusConflict, "already exists")
	})

	t.Run("without a token", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodGet, ts.APIURL("/users/me"), "", nil)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	})
}

func TestUserHandler_UpdatePasswordMe(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, password := testutil.NewUserBuilder().
		WithEmail("changer@example.com").
		WithPassword("oldpassword1").
		Build(t, ts.DB.DB)
	_ = password
	token := testutil.Login(t, ts, user.Email, "oldpassword1")

	t.Run("wrong current password", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodPatch, ts.APIURL("/users/me/password"), token, map[string]string{
			"current_password": "notmypassword",
			"new_password":     "newpassword1",
		})
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "Incorrect password")
	})

	t.Run("same as current", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodPatch, ts.APIURL("/users/me/password"), token, map[string]string{
			"current_password": "oldpassword1",
			"new_password":     "oldpassword1",
		})
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "same as the current one")
	})

	t.Run("successful change", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodPatch, ts.APIURL("/users/me/password"), token, map[string]string{
			"current_password": "oldpassword1",
			"new_password":     "newpassword1",
		})
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		testutil.Login(t, ts, user.Email, "newpassword1")
	})
}

func TestUserHandler_DeleteMe(t *testing.T) {
	ts := testutil.NewTestServer(t)

	t.Run("normal user deletes own account", func(t *testing.T) {
		user, password := testutil.NewUserBuilder().WithEmail("leaver@example.com").Build(t, ts.DB.DB)
		token := testutil.Login(t, ts, user.Email, password)

		resp := testutil.DoJSON(t, http.MethodDelete, ts.APIURL("/users/me"), token, nil)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		// The token is now orphaned.
		after := testutil.DoJSON(t, http.MethodGet, ts.APIURL("/users/me"), token, nil)
		defer after.Body.Close()
		testutil.AssertStatusCode(t, after, http.StatusNotFound)
	})

	t.Run("superuser may not delete themselves", func(t *testing.T) {
		super, password := testutil.NewUserBuilder().WithEmail("root@example.com").Superuser().Build(t, ts.DB.DB)
		token := testutil.Login(t, ts, super.Email, password)

		resp := testutil.DoJSON(t, http.MethodDelete, ts.APIURL("/users/me"), token, nil)
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusForbidden, "not allowed to delete themselves")
	})
}

func TestUserHandler_AdminEndpoints(t *testing.T) {
	ts := testutil.NewTestServer(t)

	super, superPassword := testutil.NewUserBuilder().WithEmail("admin@example.com").Superuser().Build(t, ts.DB.DB)
	normal, normalPassword := testutil.NewUserBuilder().WithEmail("user@example.com").Build(t, ts.DB.DB)
	superToken := testutil.Login(t, ts, super.Email, superPassword)
	normalToken := testutil.Login(t, ts, normal.Email, normalPassword)

	t.Run("list requires superuser", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodGet, ts.APIURL("/users/"), normalToken, nil)
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusForbidden, "enough privileges")
	})

	t.Run("list as superuser", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodGet, ts.APIURL("/users/"), superToken, nil)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)
		var body usersBody
		testutil.AssertJSONResponse(t, resp, &body)
		assert.EqualValues(t, 2, body.Count)
		assert.Len(t, body.Data, 2)
	})

	t.Run("admin create", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/users/"), superToken, map[string]any{
			"email":        "minted@example.com",
			"password":     "password123",
			"is_superuser": false,
		})
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)

		// The new-account email goes out through the mailer.
		sent := ts.Mailer.Sent()
		require.NotEmpty(t, sent)
		assert.Equal(t, "minted@example.com", sent[len(sent)-1].To)
	})

	t.Run("read another user by id", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodGet, ts.APIURL("/users/"+normal.ID.String()), superToken, nil)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)
		var body userBody
		testutil.AssertJSONResponse(t, resp, &body)
		assert.Equal(t, normal.Email, body.Email)
	})

	t.Run("normal user reads own id", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodGet, ts.APIURL("/users/"+normal.ID.String()), normalToken, nil)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)
	})

	t.Run("normal user reads someone else", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodGet, ts.APIURL("/users/"+super.ID.String()), normalToken, nil)
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusForbidden, "enough privileges")
	})

	t.Run("admin update", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodPatch, ts.APIURL("/users/"+normal.ID.String()), superToken, map[string]any{
			"full_name": "Renamed By Admin",
		})
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)
		var body userBody
		testutil.AssertJSONResponse(t, resp, &body)
		require.NotNil(t, body.FullName)
		assert.Equal(t, "Renamed By Admin", *body.FullName)
	})

	t.Run("admin update requires superuser", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodPatch, ts.APIURL("/users/"+super.ID.String()), normalToken, map[string]any{
			"full_name": "Sneaky",
		})
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusForbidden)
	})

	t.Run("admin delete own account is forbidden", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodDelete, ts.APIURL("/users/"+super.ID.String()), superToken, nil)
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusForbidden, "not allowed to delete themselves")
	})

	t.Run("admin delete another user", func(t *testing.T) {
		victim, _ := testutil.NewUserBuilder().WithEmail("victim@example.com").Build(t, ts.DB.DB)

		resp := testutil.DoJSON(t, http.MethodDelete, ts.APIURL("/users/"+victim.ID.String()), superToken, nil)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		lookup := testutil.DoJSON(t, http.MethodGet, ts.APIURL("/users/"+victim.ID.String()), superToken, nil)
		defer lookup.Body.Close()
		testutil.AssertStatusCode(t, lookup, http.StatusNotFound)
	})
}
