package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/looplearn/loop-api/internal/domain"
	"github.com/looplearn/loop-api/internal/service"
	"github.com/looplearn/loop-api/internal/service/auth"
)

// fakeUserService implements service.UserService for handler tests.
type fakeUserService struct {
	users     map[string]*domain.User
	passwords map[string]string
}

func newFakeUserService() *fakeUserService {
	return &fakeUserService{
		users:     make(map[string]*domain.User),
		passwords: make(map[string]string),
	}
}

func (f *fakeUserService) Register(_ context.Context, email, password string) (*domain.User, error) {
	if _, ok := f.users[email]; ok {
		return nil, service.ErrEmailTaken
	}
	user, err := domain.NewUser(email, password)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	f.users[email] = user
	f.passwords[email] = password
	return user, nil
}

func (f *fakeUserService) Authenticate(_ context.Context, email, password string) (*domain.User, error) {
	user, ok := f.users[email]
	if !ok || f.passwords[email] != password {
		return nil, auth.ErrInvalidCredentials
	}
	return user, nil
}

func (f *fakeUserService) GetUser(_ context.Context, userID uuid.UUID) (*domain.User, error) {
	for _, user := range f.users {
		if user.ID == userID {
			return user, nil
		}
	}
	return nil, service.ErrUserNotFound
}

// fakeJWTService issues predictable tokens for handler tests.
type fakeJWTService struct {
	generateErr error
}

func (f *fakeJWTService) GenerateToken(_ context.Context, userID uuid.UUID) (string, error) {
	if f.generateErr != nil {
		return "", f.generateErr
	}
	return "token-" + userID.String(), nil
}

func (f *fakeJWTService) ValidateToken(context.Context, string) (*auth.Claims, error) {
	return nil, auth.ErrInvalidToken
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestRegisterHandler(t *testing.T) {
	t.Parallel()

	handler := NewAuthHandler(newFakeUserService(), &fakeJWTService{}, nil)

	w := postJSON(t, handler.Register, "/auth/register", RegisterRequest{
		Email:    "learner@example.com",
		Password: "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp AuthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NotEqual(t, uuid.Nil, resp.UserID)
	assert.Equal(t, "token-"+resp.UserID.String(), resp.Token)
}

func TestRegisterHandlerDuplicate(t *testing.T) {
	t.Parallel()

	handler := NewAuthHandler(newFakeUserService(), &fakeJWTService{}, nil)

	w := postJSON(t, handler.Register, "/auth/register", RegisterRequest{
		Email:    "learner@example.com",
		Password: "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, handler.Register, "/auth/register", RegisterRequest{
		Email:    "learner@example.com",
		Password: "correct horse battery",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterHandlerValidation(t *testing.T) {
	t.Parallel()

	handler := NewAuthHandler(newFakeUserService(), &fakeJWTService{}, nil)

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{name: "invalid email", req: RegisterRequest{Email: "nope", Password: "correct horse battery"}},
		{name: "short password", req: RegisterRequest{Email: "a@example.com", Password: "short"}},
		{name: "missing email", req: RegisterRequest{Password: "correct horse battery"}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			w := postJSON(t, handler.Register, "/auth/register", tc.req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRegisterHandlerMalformedBody(t *testing.T) {
	t.Parallel()

	handler := NewAuthHandler(newFakeUserService(), &fakeJWTService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	handler.Register(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginHandler(t *testing.T) {
	t.Parallel()

	users := newFakeUserService()
	handler := NewAuthHandler(users, &fakeJWTService{}, nil)

	w := postJSON(t, handler.Register, "/auth/register", RegisterRequest{
		Email:    "learner@example.com",
		Password: "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, handler.Login, "/auth/login", LoginRequest{
		Email:    "learner@example.com",
		Password: "correct horse battery",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp AuthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NotEmpty(t, resp.Token)
}

func TestLoginHandlerInvalidCredentials(t *testing.T) {
	t.Parallel()

	users := newFakeUserService()
	handler := NewAuthHandler(users, &fakeJWTService{}, nil)

	w := postJSON(t, handler.Login, "/auth/login", LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
