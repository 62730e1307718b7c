package posts

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
	ErrMissingFields  = errors.New("title, content, and authorId are required")
	ErrAuthorNotFound = errors.New("author not found")
	ErrSlugTaken      = errors.New("slug already exists")
)

type PostModule struct {
	db *gorm.DB
}

func NewPostModule(db *gorm.DB) *PostModule {
	return &PostModule{db: db}
}

func (p *PostModule) RegisterRoutes(router *gin.Engine) {
	postGroup := router.Group("/api/posts")
	{
		postGroup.GET("", p.list)
		postGroup.GET("/featured", p.featured)
		postGroup.GET("/search", p.search)
		postGroup.GET("/slug/:slug", p.bySlug)
		postGroup.GET("/tag/:tag", p.byTag)
		postGroup.GET("/author/:authorId", p.byAuthor)
		postGroup.GET("/:id", p.byID)
		postGroup.POST("", p.create)
	}
}

type createPostRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Excerpt    string   `json:"excerpt"`
	Slug       string   `json:"slug"`
	CoverImage string   `json:"coverImage"`
	AuthorID   uint     `json:"authorId"`
	Tags       []string `json:"tags"`
	Featured   bool     `json:"featured"`
	ReadTime   int      `json:"readTime"`
}

func (p *PostModule) list(c *gin.Context) {
	posts, err := p.listPosts()
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading posts")
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (p *PostModule) featured(c *gin.Context) {
	posts, err := p.listFeaturedPosts()
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading posts")
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (p *PostModule) search(c *gin.Context) {
	posts, err := p.searchPosts(c.Query("q"))
	if err != nil {
		c.String(http.StatusInternalServerError, "Error searching posts")
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (p *PostModule) byID(c *gin.Context) {
	post, err := p.getPost(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.String(http.StatusNotFound, "Post not found")
		} else {
			c.String(http.StatusInternalServerError, "Error loading post")
		}
		return
	}
	c.JSON(http.StatusOK, post)
}

func (p *PostModule) bySlug(c *gin.Context) {
	post, err := p.getPostBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.String(http.StatusNotFound, "Post not found")
		} else {
			c.String(http.StatusInternalServerError, "Error loading post")
		}
		return
	}
	c.JSON(http.StatusOK, post)
}

func (p *PostModule) byTag(c *gin.Context) {
	posts, err := p.listPostsByTag(c.Param("tag"))
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading posts")
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (p *PostModule) byAuthor(c *gin.Context) {
	posts, err := p.listPostsByAuthor(c.Param("authorId"))
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading posts")
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (p *PostModule) create(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Title, content, and authorId are required")
		return
	}

	post, err := p.createPost(&req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			c.String(http.StatusBadRequest, "Title, content, and authorId are required")
		case errors.Is(err, ErrAuthorNotFound):
			c.String(http.StatusBadRequest, "Author not found")
		case errors.Is(err, ErrSlugTaken):
			c.String(http.StatusBadRequest, "Slug already exists")
		default:
			c.String(http.StatusInternalServerError, "Error creating post")
		}
		return
	}

	c.JSON(http.StatusOK, post)
}

func (p *PostModule) listPosts() ([]models.Post, error) {
	var posts []models.Post
	if err := p.db.Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return p.attachTags(posts)
}

func (p *PostModule) listFeaturedPosts() ([]models.Post, error) {
	var posts []models.Post
	if err := p.db.Where("featured = ?", true).Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return p.attachTags(posts)
}

func (p *PostModule) listPostsByAuthor(authorID string) ([]models.Post, error) {
	var posts []models.Post
	if err := p.db.Where("author_id = ?", authorID).Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return p.attachTags(posts)
}

// listPostsByTag matches the tag as an exact element of the post's tag
// collection, never as a substring.
func (p *PostModule) listPostsByTag(tag string) ([]models.Post, error) {
	var posts []models.Post
	err := p.db.
		Joins("JOIN post_tags ON post_tags.post_id = posts.id").
		Where("post_tags.tag = ?", tag).
		Order("posts.created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return p.attachTags(posts)
}

func (p *PostModule) searchPosts(query string) ([]models.Post, error) {
	var posts []models.Post
	like := "%" + strings.ToLower(query) + "%"
	err := p.db.
		Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ? OR LOWER(excerpt) LIKE ?", like, like, like).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return p.attachTags(posts)
}

func (p *PostModule) getPost(id string) (*models.Post, error) {
	var post models.Post
	if err := p.db.First(&post, "id = ?", id).Error; err != nil {
		return nil, err
	}
	post.Tags = p.getPostTags(post.ID)
	return &post, nil
}

func (p *PostModule) getPostBySlug(slug string) (*models.Post, error) {
	var post models.Post
	if err := p.db.Where("slug = ?", slug).First(&post).Error; err != nil {
		return nil, err
	}
	post.Tags = p.getPostTags(post.ID)
	return &post, nil
}

func (p *PostModule) createPost(req *createPostRequest) (*models.Post, error) {
	if req.Title == "" || req.Content == "" || req.AuthorID == 0 {
		return nil, ErrMissingFields
	}

	var author models.User
	if err := p.db.First(&author, req.AuthorID).Error; err != nil {
		return nil, ErrAuthorNotFound
	}

	post := &models.Post{
		Title:      req.Title,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		Slug:       req.Slug,
		CoverImage: req.CoverImage,
		AuthorID:   req.AuthorID,
		Featured:   req.Featured,
		ReadTime:   req.ReadTime,
	}
	preparePostForInsert(post)

	var existing models.Post
	if err := p.db.Where("slug = ?", post.Slug).First(&existing).Error; err == nil {
		return nil, ErrSlugTaken
	}

	if err := p.db.Create(post).Error; err != nil {
		// Two concurrent creates with the same slug race past the pre-check;
		// the unique constraint settles it.
		if isUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}

	if err := p.savePostTags(post.ID, req.Tags); err != nil {
		// No transactions here, so don't leave a half-created post behind
		// when its tag rows fail to write.
		p.db.Delete(&models.Post{}, post.ID)
		return nil, err
	}
	post.Tags = p.getPostTags(post.ID)

	return post, nil
}

// preparePostForInsert fills the derived fields before the row is written:
// timestamps, the slug when none was supplied, the excerpt from the content,
// and the default read time.
func preparePostForInsert(post *models.Post) {
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	if post.Slug == "" {
		post.Slug = generateSlug(post.Title)
	}
	if post.Excerpt == "" {
		post.Excerpt = deriveExcerpt(post.Content)
	}
	if post.ReadTime == 0 {
		post.ReadTime = estimateReadTime(post.Content)
	}
}

// deletePost removes the post together with its comments and tag rows.
func (p *PostModule) deletePost(id uint) error {
	if err := p.db.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	if err := p.db.Where("post_id = ?", id).Delete(&models.PostTag{}).Error; err != nil {
		return err
	}
	return p.db.Delete(&models.Post{}, id).Error
}

func (p *PostModule) getPostTags(postID uint) []string {
	var postTags []models.PostTag
	if err := p.db.Where("post_id = ?", postID).Order("id ASC").Find(&postTags).Error; err != nil {
		return []string{}
	}

	tags := make([]string, 0, len(postTags))
	for _, pt := range postTags {
		tags = append(tags, pt.Tag)
	}
	return tags
}

func (p *PostModule) savePostTags(postID uint, tags []string) error {
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		postTag := models.PostTag{
			PostID: postID,
			Tag:    tag,
		}
		if err := p.db.Create(&postTag).Error; err != nil {
			return err
		}
	}
	return nil
}

// attachTags loads the tag rows for every post in one query and distributes
// them, so listings never touch a lazy relation.
func (p *PostModule) attachTags(posts []models.Post) ([]models.Post, error) {
	if len(posts) == 0 {
		return posts, nil
	}

	ids := make([]uint, len(posts))
	for i, post := range posts {
		ids[i] = post.ID
	}

	var postTags []models.PostTag
	if err := p.db.Where("post_id IN ?", ids).Order("id ASC").Find(&postTags).Error; err != nil {
		return nil, err
	}

	tagsByPost := make(map[uint][]string)
	for _, pt := range postTags {
		tagsByPost[pt.PostID] = append(tagsByPost[pt.PostID], pt.Tag)
	}

	for i := range posts {
		posts[i].Tags = tagsByPost[posts[i].ID]
		if posts[i].Tags == nil {
			posts[i].Tags = []string{}
		}
	}
	return posts, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
