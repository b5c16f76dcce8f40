package echoapi_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/sarvodaya/feedesk/apps/api/echo"
	"github.com/sarvodaya/feedesk/core/user"
)

func Test_authApi_login(t *testing.T) {
	_, srv := setup(t)

	tests := []httpTest{
		{
			name: "Username required", body: []byte(`{"password":"admin"}`), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"username":"this field is required"}`),
		},
		{
			name: "Password required", body: []byte(`{"username":"admin"}`), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"password":"this field is required"}`),
		},
		{
			name: "Wrong password", body: []byte(`{"username":"admin","password":"nope"}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "Unknown user", body: []byte(`{"username":"class13a","password":"admin"}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{name: "Admin", body: []byte(`{"username":"admin","password":"admin"}`), extra: admin},
		{name: "Username is case-insensitive", body: []byte(`{"username":" ADMIN ","password":"admin"}`), extra: admin},
		{name: "Teacher", body: []byte(`{"username":"class1a","password":"admin"}`), extra: teacher},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/auth/login"
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			srv.ServeHTTP(rec, req)

			if tt.wantCode != http.StatusOK {
				checkCodeAndData(t, tt, rec)
				return
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; data %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			var resp LoginResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("json.Unmarshal() failed: %v", err)
			}
			assert.NotEmpty(t, resp.Token)
			assert.Equal(t, tt.extra.(user.User), resp.User)

			// the token authenticates its user
			req, rec = newAuthRequest(http.MethodGet, "/v1/auth/me", resp.Token)
			srv.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, tt.extra)}, rec)
		})
	}
}

func Test_authApi_me(t *testing.T) {
	app, srv := setup(t)

	runTests(t, srv, []httpTest{
		{name: "Auth required", path: "/v1/auth/me", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Admin", path: "/v1/auth/me", token: getToken(t, app, admin), wantData: marchallObj(t, admin)},
		{name: "Teacher", path: "/v1/auth/me", token: getToken(t, app, teacher), wantData: marchallObj(t, teacher)},
	})
}

func Test_authApi_changePassword(t *testing.T) {
	app, srv := setup(t)
	token := getToken(t, app, teacher)

	runTests(t, srv, []httpTest{
		{
			name: "Auth required", method: http.MethodPost, path: "/v1/auth/password",
			body:     []byte(`{"old_password":"admin","new_password":"s3cret"}`),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "New password required", method: http.MethodPost, path: "/v1/auth/password", token: token,
			body:     []byte(`{"old_password":"admin","new_password":"  "}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"new_password":"this field is required"}`),
		},
		{
			name: "Wrong old password", method: http.MethodPost, path: "/v1/auth/password", token: token,
			body:     []byte(`{"old_password":"nope","new_password":"s3cret"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "Changed", method: http.MethodPost, path: "/v1/auth/password", token: token,
			body:     []byte(`{"old_password":"admin","new_password":"s3cret"}`),
			wantData: marchallObj(t, SuccessResponse{Success: "Password has been changed."}),
		},
	})

	if _, err := app.Users.Authenticate("class1a", "admin"); err != user.ErrInvalidCredentials {
		t.Errorf("Authenticate(old password) error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := app.Users.Authenticate("class1a", "s3cret"); err != nil {
		t.Errorf("Authenticate(new password) error = %v", err)
	}
	// other accounts are left alone
	if _, err := app.Users.Authenticate("admin", "admin"); err != nil {
		t.Errorf("Authenticate(admin) error = %v", err)
	}
}

func TestServer_home(t *testing.T) {
	_, srv := setup(t)

	req, rec := newRequest(http.MethodGet, "/")
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to FeeDesk API!", rec.Body.String())
}
