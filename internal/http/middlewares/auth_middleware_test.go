package middlewares

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/toryoki/jobhub/internal/auth"
	"github.com/toryoki/jobhub/internal/domain/user"
	"github.com/toryoki/jobhub/internal/repo/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newProtectedRouter(t *testing.T, tokens *auth.Manager, users *memory.UsersRepo) *gin.Engine {
	t.Helper()

	guard := NewAuthMiddleware(tokens, users)
	r := gin.New()
	r.GET("/protected", guard.Protect(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userID": c.GetString(CtxUserIDKey),
			"email":  c.GetString(CtxUserEmailKey),
			"role":   c.GetString(CtxUserRoleKey),
		})
	})
	return r
}

func seedUser(t *testing.T, users *memory.UsersRepo) user.User {
	t.Helper()
	u, err := users.Create(context.Background(), user.CreateParams{
		Name: "Uma", Email: "uma@example.com", Role: auth.RoleHR, PasswordHash: "irrelevant",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return u
}

func protectMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return body.Error.Message
}

func TestProtectAllowsValidBearerToken(t *testing.T) {
	users := memory.NewUsersRepo()
	tokens := auth.NewManager("test-secret", time.Hour)
	u := seedUser(t, users)
	r := newProtectedRouter(t, tokens, users)

	token, err := tokens.Issue(u.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["userID"] != u.ID || body["email"] != u.Email || body["role"] != auth.RoleHR {
		t.Errorf("context = %v", body)
	}
}

func TestProtectAllowsCookieToken(t *testing.T) {
	users := memory.NewUsersRepo()
	tokens := auth.NewManager("test-secret", time.Hour)
	u := seedUser(t, users)
	r := newProtectedRouter(t, tokens, users)

	token, err := tokens.Issue(u.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestProtectRejections(t *testing.T) {
	users := memory.NewUsersRepo()
	tokens := auth.NewManager("test-secret", time.Hour)
	expiredTokens := auth.NewManager("test-secret", -time.Minute)
	u := seedUser(t, users)

	expired, err := expiredTokens.Issue(u.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	ghost, err := tokens.Issue("00000000-0000-0000-0000-000000000000")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	deactivated := seedUser2(t, users, "gone@example.com")
	deactivatedToken, err := tokens.Issue(deactivated.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := users.Deactivate(context.Background(), deactivated.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	rotated := seedUser2(t, users, "rotated@example.com")
	rotatedToken, err := tokens.Issue(rotated.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := users.UpdatePassword(context.Background(), rotated.ID, "newhash", time.Now().UTC().Add(time.Minute)); err != nil {
		t.Fatalf("update password: %v", err)
	}

	r := newProtectedRouter(t, tokens, users)

	tests := []struct {
		name        string
		token       string
		wantMessage string
	}{
		{"missing token", "", "You are not logged in. Please log in to get access."},
		{"garbage token", "not.a.jwt", "Invalid token. Please log in again."},
		{"expired token", expired, "Your token has expired. Please log in again."},
		{"deleted user", ghost, "The user belonging to this token no longer exists."},
		{"deactivated user", deactivatedToken, "The user belonging to this token no longer exists."},
		{"password changed after issuance", rotatedToken, "User recently changed password. Please log in again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", w.Code)
			}
			if got := protectMessage(t, w); got != tt.wantMessage {
				t.Errorf("message = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func seedUser2(t *testing.T, users *memory.UsersRepo, email string) user.User {
	t.Helper()
	u, err := users.Create(context.Background(), user.CreateParams{
		Name: "Extra", Email: email, Role: auth.RoleUser, PasswordHash: "irrelevant",
	})
	if err != nil {
		t.Fatalf("seed %s: %v", email, err)
	}
	return u
}

func TestRestrictTo(t *testing.T) {
	tests := []struct {
		role    string
		allowed []string
		want    int
	}{
		{auth.RoleAdmin, []string{auth.RoleAdmin, auth.RoleHR}, http.StatusOK},
		{auth.RoleHR, []string{auth.RoleAdmin, auth.RoleHR}, http.StatusOK},
		{auth.RoleUser, []string{auth.RoleAdmin, auth.RoleHR}, http.StatusForbidden},
		{"", []string{auth.RoleAdmin}, http.StatusForbidden},
	}

	for _, tt := range tests {
		r := gin.New()
		r.GET("/x",
			func(c *gin.Context) { c.Set(CtxUserRoleKey, tt.role) },
			RestrictTo(tt.allowed...),
			func(c *gin.Context) { c.Status(http.StatusOK) },
		)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		if w.Code != tt.want {
			t.Errorf("role %q allowed %v: status = %d, want %d", tt.role, tt.allowed, w.Code, tt.want)
		}
	}
}
