package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"inkwell/models"
)

var (
	ErrMissingFields      = errors.New("name, email, and password are required")
	ErrEmailTaken         = errors.New("email already exists")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type AuthModule struct {
	db *gorm.DB
}

func NewAuthModule(db *gorm.DB) *AuthModule {
	return &AuthModule{db: db}
}

func (a *AuthModule) RegisterRoutes(router *gin.Engine) {
	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/register", a.register)
		authGroup.POST("/login", a.login)
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResponse is the flat record returned by both register and login.
// No session or token is issued.
func userResponse(user *models.User) gin.H {
	return gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"avatar":   user.Avatar,
	}
}

func (a *AuthModule) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Name, email, and password are required")
		return
	}

	user, err := a.createUser(req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			c.String(http.StatusBadRequest, "Name, email, and password are required")
		case errors.Is(err, ErrEmailTaken):
			c.String(http.StatusBadRequest, "Email already exists")
		case errors.Is(err, ErrUsernameTaken):
			c.String(http.StatusBadRequest, "Username already exists")
		default:
			c.String(http.StatusInternalServerError, "Error creating account")
		}
		return
	}

	c.JSON(http.StatusOK, userResponse(user))
}

func (a *AuthModule) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.String(http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := a.authenticate(req.Email, req.Password)
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid email or password")
		return
	}

	c.JSON(http.StatusOK, userResponse(user))
}

func (a *AuthModule) createUser(name, email, password string) (*models.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	var existing models.User
	if err := a.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}
	if err := a.db.Where("username = ?", name).First(&existing).Error; err == nil {
		return nil, ErrUsernameTaken
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     name,
		Email:        email,
		PasswordHash: passwordHash,
	}

	if err := a.db.Create(user).Error; err != nil {
		// A concurrent registration can still hit the unique constraint.
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return user, nil
}

// authenticate reports the same error for an unknown email and a wrong
// password so callers cannot tell which field was rejected.
func (a *AuthModule) authenticate(email, password string) (*models.User, error) {
	var user models.User
	if err := a.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if !checkPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}
