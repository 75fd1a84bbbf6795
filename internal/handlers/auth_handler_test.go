package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "naijatax/internal/errors"
	"naijatax/internal/logger"
	"naijatax/internal/middleware"
	"naijatax/internal/models"
	"naijatax/internal/validator"
)

const (
	testUserID        = "01927f4e-8a00-7000-8000-000000000001"
	testCompanyID     = "01927f4e-8a00-7000-8000-0000000000c1"
	testTransactionID = "01927f4e-8a00-7000-8000-0000000000a1"
)

// --- mock services ---

type mockUserService struct {
	createUserFn            func(email, password, firstName, lastName string) (*models.User, error)
	getUserByEmailFn        func(email string) (*models.User, error)
	getUserByIDFn           func(id string) (*models.User, error)
	verifyPasswordFn        func(user *models.User, password string) bool
	attemptLoginFn          func(email, password string) (*models.User, error)
	storeRefreshTokenHashFn func(userID, tokenHash string) error
	getRefreshTokenHashFn   func(userID string) (string, error)
}

func (m *mockUserService) CreateUser(email, password, firstName, lastName string) (*models.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(email, password, firstName, lastName)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByEmail(email string) (*models.User, error) {
	if m.getUserByEmailFn != nil {
		return m.getUserByEmailFn(email)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByID(id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{}, nil
}

func (m *mockUserService) VerifyPassword(user *models.User, password string) bool {
	if m.verifyPasswordFn != nil {
		return m.verifyPasswordFn(user, password)
	}
	return true
}

func (m *mockUserService) AttemptLogin(email, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(email, password)
	}
	return &models.User{}, nil
}

func (m *mockUserService) StoreRefreshTokenHash(userID, tokenHash string) error {
	if m.storeRefreshTokenHashFn != nil {
		return m.storeRefreshTokenHashFn(userID, tokenHash)
	}
	return nil
}

func (m *mockUserService) GetRefreshTokenHash(userID string) (string, error) {
	if m.getRefreshTokenHashFn != nil {
		return m.getRefreshTokenHashFn(userID)
	}
	return "", nil
}

// mockActivityService records the actions logged by handlers.
type mockActivityService struct {
	actions []string
}

func (m *mockActivityService) Log(_, action, _, _, _ string, _ map[string]any) {
	m.actions = append(m.actions, action)
}

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

func testUser() *models.User {
	return &models.User{
		Base:      models.Base{ID: testUserID},
		Email:     "ada@example.com",
		FirstName: "Ada",
		LastName:  "Obi",
	}
}

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	r := gin.New()
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	r.POST("/auth/refresh", handler.Refresh)
	r.GET("/profile", injectUserID(testUserID), handler.GetProfile)
	return r
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

// --- tests ---

func TestAuthHandler_Register(t *testing.T) {
	t.Run("returns 201 with a token pair", func(t *testing.T) {
		var storedFor string
		userSvc := &mockUserService{
			createUserFn: func(email, _, firstName, lastName string) (*models.User, error) {
				u := testUser()
				u.Email, u.FirstName, u.LastName = email, firstName, lastName
				return u, nil
			},
			storeRefreshTokenHashFn: func(userID, hash string) error {
				storedFor = userID
				if len(hash) != 64 {
					t.Errorf("expected a sha256 hex digest, got %q", hash)
				}
				return nil
			},
		}
		activity := &mockActivityService{}
		r := setupAuthRouter(NewAuthHandler(userSvc, activity))

		rec := doRequest(r, "POST", "/auth/register",
			`{"email":"ada@example.com","password":"password123","first_name":"Ada","last_name":"Obi"}`)

		assertStatus(t, rec, http.StatusCreated)
		result := parseJSON(t, rec)
		if result["access_token"] == "" || result["refresh_token"] == "" {
			t.Errorf("expected both tokens, got %v", result)
		}
		user := result["user"].(map[string]interface{})
		if user["email"] != "ada@example.com" {
			t.Errorf("expected email ada@example.com, got %v", user["email"])
		}
		if storedFor != testUserID {
			t.Errorf("expected refresh hash stored for %s, got %q", testUserID, storedFor)
		}
		if len(activity.actions) != 1 || activity.actions[0] != "REGISTER" {
			t.Errorf("expected REGISTER activity, got %v", activity.actions)
		}
	})

	t.Run("returns 400 on short password", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, &mockActivityService{}))

		rec := doRequest(r, "POST", "/auth/register", `{"email":"ada@example.com","password":"short"}`)

		assertStatus(t, rec, http.StatusBadRequest)
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 409 on duplicate email", func(t *testing.T) {
		userSvc := &mockUserService{
			createUserFn: func(_, _, _, _ string) (*models.User, error) {
				return nil, apperrors.ErrDuplicateEmail
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, &mockActivityService{}))

		rec := doRequest(r, "POST", "/auth/register", `{"email":"ada@example.com","password":"password123"}`)

		assertStatus(t, rec, http.StatusConflict)
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_EMAIL")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("returns 200 on valid credentials", func(t *testing.T) {
		userSvc := &mockUserService{
			attemptLoginFn: func(email, password string) (*models.User, error) {
				if email != "ada@example.com" || password != "password123" {
					t.Errorf("unexpected credentials %q/%q", email, password)
				}
				return testUser(), nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, &mockActivityService{}))

		rec := doRequest(r, "POST", "/auth/login", `{"email":"ada@example.com","password":"password123"}`)

		assertStatus(t, rec, http.StatusOK)
		if parseJSON(t, rec)["access_token"] == "" {
			t.Error("expected access token")
		}
	})

	t.Run("maps service errors", func(t *testing.T) {
		tests := []struct {
			err    error
			status int
			code   string
		}{
			{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
			{apperrors.ErrAccountLocked, http.StatusLocked, "ACCOUNT_LOCKED"},
			{fmt.Errorf("db down"), http.StatusInternalServerError, "INTERNAL_ERROR"},
		}
		for _, tt := range tests {
			t.Run(tt.code, func(t *testing.T) {
				userSvc := &mockUserService{
					attemptLoginFn: func(_, _ string) (*models.User, error) { return nil, tt.err },
				}
				r := setupAuthRouter(NewAuthHandler(userSvc, &mockActivityService{}))

				rec := doRequest(r, "POST", "/auth/login", `{"email":"ada@example.com","password":"wrong"}`)

				assertStatus(t, rec, tt.status)
				assertErrorCode(t, parseJSON(t, rec), tt.code)
			})
		}
	})

	t.Run("returns 400 on malformed email", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, &mockActivityService{}))

		rec := doRequest(r, "POST", "/auth/login", `{"email":"not-an-email","password":"x"}`)

		assertStatus(t, rec, http.StatusBadRequest)
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	refresh, err := middleware.GenerateRefreshToken(testUser())
	if err != nil {
		t.Fatalf("failed to sign refresh token: %v", err)
	}
	body := fmt.Sprintf(`{"refresh_token":%q}`, refresh)

	t.Run("rotates the token pair", func(t *testing.T) {
		stored := middleware.HashToken(refresh)
		userSvc := &mockUserService{
			getRefreshTokenHashFn: func(string) (string, error) { return stored, nil },
			getUserByIDFn:         func(string) (*models.User, error) { return testUser(), nil },
			storeRefreshTokenHashFn: func(_, hash string) error {
				stored = hash
				return nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, &mockActivityService{}))

		rec := doRequest(r, "POST", "/auth/refresh", body)

		assertStatus(t, rec, http.StatusOK)
		result := parseJSON(t, rec)
		if stored != middleware.HashToken(result["refresh_token"].(string)) {
			t.Error("expected the new refresh token hash to be stored")
		}
	})

	t.Run("rejects a revoked token", func(t *testing.T) {
		userSvc := &mockUserService{
			getRefreshTokenHashFn: func(string) (string, error) { return middleware.HashToken("other"), nil },
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, &mockActivityService{}))

		rec := doRequest(r, "POST", "/auth/refresh", body)

		assertStatus(t, rec, http.StatusUnauthorized)
		assertErrorCode(t, parseJSON(t, rec), "UNAUTHORIZED")
	})

	t.Run("rejects an access token", func(t *testing.T) {
		access, err := middleware.GenerateAccessToken(testUser())
		if err != nil {
			t.Fatalf("failed to sign access token: %v", err)
		}
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, &mockActivityService{}))

		rec := doRequest(r, "POST", "/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, access))

		assertStatus(t, rec, http.StatusUnauthorized)
	})
}

func TestAuthHandler_GetProfile(t *testing.T) {
	t.Run("returns the profile", func(t *testing.T) {
		userSvc := &mockUserService{
			getUserByIDFn: func(id string) (*models.User, error) {
				if id != testUserID {
					t.Errorf("expected user %s, got %s", testUserID, id)
				}
				return testUser(), nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, &mockActivityService{}))

		rec := doRequest(r, "GET", "/profile", "")

		assertStatus(t, rec, http.StatusOK)
		user := parseJSON(t, rec)["user"].(map[string]interface{})
		if user["first_name"] != "Ada" {
			t.Errorf("expected first name Ada, got %v", user["first_name"])
		}
	})

	t.Run("returns 401 without a user", func(t *testing.T) {
		r := gin.New()
		r.GET("/profile", NewAuthHandler(&mockUserService{}, &mockActivityService{}).GetProfile)

		rec := doRequest(r, "GET", "/profile", "")

		assertStatus(t, rec, http.StatusUnauthorized)
	})
}
