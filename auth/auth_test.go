package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"inkwell/models"
)

func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.AutoMigrate(&models.User{})
	return db
}

func setupTestRouter(authModule *AuthModule) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	authModule.RegisterRoutes(router)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegister_Success(t *testing.T) {
	db := setupTestDB()
	authModule := NewAuthModule(db)
	router := setupTestRouter(authModule)

	w := postJSON(router, "/api/auth/register", `{"name": "alice", "email": "alice@example.com", "password": "secret123"}`)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp["username"])
	assert.Equal(t, "alice@example.com", resp["email"])
	assert.Nil(t, resp["avatar"])
	assert.NotContains(t, resp, "password")

	var user models.User
	assert.NoError(t, db.Where("email = ?", "alice@example.com").First(&user).Error)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
}

func TestRegister_MissingFields(t *testing.T) {
	db := setupTestDB()
	authModule := NewAuthModule(db)
	router := setupTestRouter(authModule)

	w := postJSON(router, "/api/auth/register", `{"name": "alice"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Name, email, and password are required", w.Body.String())
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db := setupTestDB()
	authModule := NewAuthModule(db)
	router := setupTestRouter(authModule)

	w := postJSON(router, "/api/auth/register", `{"name": "alice", "email": "alice@example.com", "password": "secret123"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	// Same email, different username.
	w = postJSON(router, "/api/auth/register", `{"name": "bob", "email": "alice@example.com", "password": "other456"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email already exists", w.Body.String())
}

func TestRegister_DuplicateUsername(t *testing.T) {
	db := setupTestDB()
	authModule := NewAuthModule(db)
	router := setupTestRouter(authModule)

	w := postJSON(router, "/api/auth/register", `{"name": "alice", "email": "alice@example.com", "password": "secret123"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = postJSON(router, "/api/auth/register", `{"name": "alice", "email": "alice2@example.com", "password": "other456"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Username already exists", w.Body.String())
}

func TestLogin_Success(t *testing.T) {
	db := setupTestDB()
	authModule := NewAuthModule(db)
	router := setupTestRouter(authModule)

	postJSON(router, "/api/auth/register", `{"name": "alice", "email": "alice@example.com", "password": "secret123"}`)

	w := postJSON(router, "/api/auth/login", `{"email": "alice@example.com", "password": "secret123"}`)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp["username"])
	assert.Equal(t, "alice@example.com", resp["email"])
}

func TestLogin_MissingFields(t *testing.T) {
	db := setupTestDB()
	authModule := NewAuthModule(db)
	router := setupTestRouter(authModule)

	w := postJSON(router, "/api/auth/login", `{"email": "alice@example.com"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email and password are required", w.Body.String())
}

// Wrong password and unknown email must be indistinguishable to the caller.
func TestLogin_FailuresLookIdentical(t *testing.T) {
	db := setupTestDB()
	authModule := NewAuthModule(db)
	router := setupTestRouter(authModule)

	postJSON(router, "/api/auth/register", `{"name": "alice", "email": "alice@example.com", "password": "secret123"}`)

	wrongPassword := postJSON(router, "/api/auth/login", `{"email": "alice@example.com", "password": "wrong"}`)
	unknownEmail := postJSON(router, "/api/auth/login", `{"email": "nobody@example.com", "password": "secret123"}`)

	assert.Equal(t, http.StatusBadRequest, wrongPassword.Code)
	assert.Equal(t, http.StatusBadRequest, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	assert.Equal(t, "Invalid email or password", wrongPassword.Body.String())
}

func TestHashPassword(t *testing.T) {
	password := "testpassword123"
	hash, err := hashPassword(password)
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)
}

func TestCheckPasswordHash(t *testing.T) {
	password := "testpassword123"
	hash, _ := hashPassword(password)

	assert.True(t, checkPasswordHash(password, hash))
	assert.False(t, checkPasswordHash("wrongpassword", hash))
}
