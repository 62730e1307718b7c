package comments

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"inkwell/models"
)

var (
	ErrMissingFields = errors.New("content, postId, and userId are required")
	ErrPostNotFound  = errors.New("post not found")
	ErrUserNotFound  = errors.New("user not found")
)

type CommentModule struct {
	db *gorm.DB
}

func NewCommentModule(db *gorm.DB) *CommentModule {
	return &CommentModule{db: db}
}

func (m *CommentModule) RegisterRoutes(router *gin.Engine) {
	commentGroup := router.Group("/api/comments")
	{
		commentGroup.GET("", m.list)
		commentGroup.GET("/post/:postId", m.byPost)
		commentGroup.GET("/post/:postId/count", m.countByPost)
		commentGroup.GET("/user/:userId", m.byUser)
		commentGroup.POST("", m.create)
	}
}

type createCommentRequest struct {
	Content    string  `json:"content"`
	PostID     uint    `json:"postId"`
	UserID     uint    `json:"userId"`
	UserName   string  `json:"userName"`
	UserAvatar *string `json:"userAvatar"`
}

func (m *CommentModule) list(c *gin.Context) {
	var comments []models.Comment
	if err := m.db.Find(&comments).Error; err != nil {
		c.String(http.StatusInternalServerError, "Error loading comments")
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (m *CommentModule) byPost(c *gin.Context) {
	var comments []models.Comment
	err := m.db.Where("post_id = ?", c.Param("postId")).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading comments")
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (m *CommentModule) countByPost(c *gin.Context) {
	var count int64
	err := m.db.Model(&models.Comment{}).
		Where("post_id = ?", c.Param("postId")).
		Count(&count).Error
	if err != nil {
		c.String(http.StatusInternalServerError, "Error counting comments")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (m *CommentModule) byUser(c *gin.Context) {
	var comments []models.Comment
	err := m.db.Where("user_id = ?", c.Param("userId")).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading comments")
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (m *CommentModule) create(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Content, postId, and userId are required")
		return
	}

	comment, err := m.createComment(&req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			c.String(http.StatusBadRequest, "Content, postId, and userId are required")
		case errors.Is(err, ErrPostNotFound):
			c.String(http.StatusBadRequest, "Post not found")
		case errors.Is(err, ErrUserNotFound):
			c.String(http.StatusBadRequest, "User not found")
		default:
			c.String(http.StatusInternalServerError, "Error creating comment")
		}
		return
	}

	c.JSON(http.StatusOK, comment)
}

func (m *CommentModule) createComment(req *createCommentRequest) (*models.Comment, error) {
	if strings.TrimSpace(req.Content) == "" || req.PostID == 0 || req.UserID == 0 {
		return nil, ErrMissingFields
	}

	var post models.Post
	if err := m.db.First(&post, req.PostID).Error; err != nil {
		return nil, ErrPostNotFound
	}

	var user models.User
	if err := m.db.First(&user, req.UserID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	comment := &models.Comment{
		Content:    req.Content,
		PostID:     req.PostID,
		UserID:     req.UserID,
		UserName:   req.UserName,
		UserAvatar: req.UserAvatar,
		CreatedAt:  time.Now(),
	}

	// Snapshot the commenter's profile at insert time. These fields stay
	// frozen even if the user record changes later.
	if comment.UserName == "" {
		comment.UserName = user.Username
	}
	if comment.UserAvatar == nil {
		comment.UserAvatar = user.Avatar
	}

	if err := m.db.Create(comment).Error; err != nil {
		return nil, err
	}

	return comment, nil
}
