package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/profilehub/apiserver/internal/services"
	"github.com/profilehub/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newAuthTestServer(t *testing.T) (*httptest.Server, *fakeUserRepo) {
	t.Helper()

	repo := newFakeUserRepo()
	userService := services.NewUserService(repo)

	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, userService, testSecret, time.Hour)
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, repo
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decodeAuthResponse(t *testing.T, resp *http.Response) AuthResponse {
	t.Helper()
	defer resp.Body.Close()
	var out AuthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestRegisterThenLogin(t *testing.T) {
	srv, _ := newAuthTestServer(t)

	resp := postJSON(t, srv.URL+"/auth/register", RegisterRequest{
		Username: "alice",
		Email:    "a@x.com",
		Password: "Abc12345!",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	registered := decodeAuthResponse(t, resp)
	assert.NotEmpty(t, registered.Token)
	assert.NotEmpty(t, registered.User.ID)
	assert.Equal(t, "alice", registered.User.Username)

	resp = postJSON(t, srv.URL+"/auth/login", LoginRequest{
		Username: "alice",
		Password: "Abc12345!",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	loggedIn := decodeAuthResponse(t, resp)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)

	// The token resolves back to the same user.
	userID, username, err := parseToken(loggedIn.Token, []byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, userID)
	assert.Equal(t, "alice", username)
}

func TestLoginWithEmailIdentifier(t *testing.T) {
	srv, _ := newAuthTestServer(t)

	resp := postJSON(t, srv.URL+"/auth/register", RegisterRequest{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "Abc12345!",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/auth/login", LoginRequest{
		Username: "bob@example.com",
		Password: "Abc12345!",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterDuplicate(t *testing.T) {
	srv, _ := newAuthTestServer(t)

	resp := postJSON(t, srv.URL+"/auth/register", RegisterRequest{
		Username: "carol", Email: "carol@x.com", Password: "Abc12345!",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Same username, different email.
	resp = postJSON(t, srv.URL+"/auth/register", RegisterRequest{
		Username: "carol", Email: "other@x.com", Password: "Abc12345!",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Same email, different username.
	resp = postJSON(t, srv.URL+"/auth/register", RegisterRequest{
		Username: "carol2", Email: "carol@x.com", Password: "Abc12345!",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestRegisterValidationDetails(t *testing.T) {
	srv, _ := newAuthTestServer(t)

	resp := postJSON(t, srv.URL+"/auth/register", RegisterRequest{
		Username: "x!", Email: "not-an-email", Password: "short",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var out ValidationErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "Validation failed", out.Error)

	fields := make(map[string]bool)
	for _, detail := range out.Details {
		fields[detail.Field] = true
	}
	assert.True(t, fields["username"])
	assert.True(t, fields["email"])
	assert.True(t, fields["password"])
}

func TestLoginWrongPassword(t *testing.T) {
	srv, _ := newAuthTestServer(t)

	resp := postJSON(t, srv.URL+"/auth/register", RegisterRequest{
		Username: "dave", Email: "dave@x.com", Password: "Abc12345!",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/auth/login", LoginRequest{
		Username: "dave", Password: "Wrong12345!",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMeRequiresToken(t *testing.T) {
	srv, _ := newAuthTestServer(t)

	resp, err := http.Get(srv.URL + "/auth/me")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMeResolvesUser(t *testing.T) {
	srv, _ := newAuthTestServer(t)

	resp := postJSON(t, srv.URL+"/auth/register", RegisterRequest{
		Username: "erin", Email: "erin@x.com", Password: "Abc12345!",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	registered := decodeAuthResponse(t, resp)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/auth/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+registered.Token)

	getResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer getResp.Body.Close()
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	var me MeResponse
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&me))
	assert.Equal(t, registered.User.ID, me.User.ID)
	assert.Empty(t, me.User.PasswordHash)
}

func TestMeRejectsDeletedUser(t *testing.T) {
	srv, repo := newAuthTestServer(t)

	resp := postJSON(t, srv.URL+"/auth/register", RegisterRequest{
		Username: "frank", Email: "frank@x.com", Password: "Abc12345!",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	registered := decodeAuthResponse(t, resp)

	repo.delete(registered.User.ID)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/auth/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+registered.Token)

	getResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer getResp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, getResp.StatusCode)
}

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("secret")
	token, err := issueToken("user-1", "alice", secret, time.Hour)
	require.NoError(t, err)

	userID, username, err := parseToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "alice", username)
}

func TestTokenExpired(t *testing.T) {
	secret := []byte("secret")
	token, err := issueToken("user-1", "alice", secret, -time.Minute)
	require.NoError(t, err)

	_, _, err = parseToken(token, secret)
	assert.Error(t, err)
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := issueToken("user-1", "alice", []byte("secret"), time.Hour)
	require.NoError(t, err)

	_, _, err = parseToken(token, []byte("other"))
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, err := bearerToken(req)
	assert.Error(t, err)

	req.Header.Set("Authorization", "Basic abc")
	_, err = bearerToken(req)
	assert.Error(t, err)

	req.Header.Set("Authorization", "Bearer abc123")
	token, err := bearerToken(req)
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)
}

func TestUserFromContextMissing(t *testing.T) {
	_, err := userFromContext(context.Background())
	assert.Error(t, err)

	ctx := context.WithValue(context.Background(), contextUserKey, types.User{ID: "u1"})
	user, err := userFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}
