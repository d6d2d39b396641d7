package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"blogcms/internal/model"
	"blogcms/internal/repository"
	"blogcms/internal/service"
)

// PostHandler handles post endpoints.
type PostHandler struct {
	postService service.PostService
	authService service.AuthService
}

// NewPostHandler creates a new post handler.
func NewPostHandler(postService service.PostService, authService service.AuthService) *PostHandler {
	return &PostHandler{postService: postService, authService: authService}
}

// ListPostsRequest holds the list query string.
type ListPostsRequest struct {
	Page     int    `query:"page" validate:"omitempty,min=1"`
	Limit    int    `query:"limit" validate:"omitempty,min=1,max=50"`
	Category string `query:"category" validate:"omitempty,uuid"`
	Tag      string `query:"tag" validate:"omitempty,uuid"`
	Search   string `query:"search" validate:"omitempty,min=2,max=100"`
	SortBy   string `query:"sortBy"`
	Status   string `query:"status" validate:"omitempty,oneof=draft published archived"`
}

func (r ListPostsRequest) query() repository.PostQuery {
	return repository.PostQuery{
		Status:     model.PostStatus(r.Status),
		CategoryID: r.Category,
		TagID:      r.Tag,
		Search:     r.Search,
		Sort:       r.SortBy,
		Page:       r.Page,
		Limit:      r.Limit,
	}
}

// SEORequest is the optional SEO block. Multipart requests send it as flat
// seoMetaTitle, seoMetaDescription and repeated seoKeywords fields.
// Update requests use the same field names; see SEOPatchRequest.
type SEORequest struct {
	MetaTitle       string   `json:"metaTitle" form:"seoMetaTitle" validate:"max=200"`
	MetaDescription string   `json:"metaDescription" form:"seoMetaDescription" validate:"max=500"`
	Keywords        []string `json:"keywords" form:"seoKeywords" validate:"max=20,dive,max=50"`
}

func (r SEORequest) model() model.SEO {
	return model.SEO{MetaTitle: r.MetaTitle, MetaDescription: r.MetaDescription, Keywords: r.Keywords}
}

// SEOPatchRequest changes individual SEO fields. A nil keywords list is left
// unchanged; an empty one clears it.
type SEOPatchRequest struct {
	MetaTitle       *string  `json:"metaTitle" validate:"omitempty,max=200"`
	MetaDescription *string  `json:"metaDescription" validate:"omitempty,max=500"`
	Keywords        []string `json:"keywords" validate:"omitempty,max=20,dive,max=50"`
}

// Flat form names of the SEO fields.
const (
	formSEOMetaTitle       = "seoMetaTitle"
	formSEOMetaDescription = "seoMetaDescription"
	formSEOKeywords        = "seoKeywords"
)

// formSEO reads the flat SEO fields of a form body. It returns nil when the
// request is not a form or carries none of them.
func formSEO(c echo.Context) (*SEOPatchRequest, error) {
	ctype := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(ctype, echo.MIMEMultipartForm) && !strings.HasPrefix(ctype, echo.MIMEApplicationForm) {
		return nil, nil
	}
	params, err := c.FormParams()
	if err != nil {
		return nil, err
	}

	var seo SEOPatchRequest
	found := false
	if v := params[formSEOMetaTitle]; len(v) > 0 {
		seo.MetaTitle = &v[0]
		found = true
	}
	if v := params[formSEOMetaDescription]; len(v) > 0 {
		seo.MetaDescription = &v[0]
		found = true
	}
	if v, ok := params[formSEOKeywords]; ok {
		seo.Keywords = make([]string, 0, len(v))
		for _, kw := range v {
			if kw = strings.TrimSpace(kw); kw != "" {
				seo.Keywords = append(seo.Keywords, kw)
			}
		}
		found = true
	}
	if !found {
		return nil, nil
	}
	return &seo, nil
}

// CreatePostRequest is the body of POST /posts, as JSON or multipart form.
type CreatePostRequest struct {
	Title       string           `json:"title" form:"title" validate:"required,max=200"`
	Slug        string           `json:"slug" form:"slug" validate:"omitempty,max=100"`
	Excerpt     string           `json:"excerpt" form:"excerpt" validate:"required,max=500"`
	Content     string           `json:"content" form:"content" validate:"required"`
	AuthorName  string           `json:"authorName" form:"authorName" validate:"omitempty,max=100"`
	AuthorEmail string           `json:"authorEmail" form:"authorEmail" validate:"omitempty,email"`
	Status      model.PostStatus `json:"status" form:"status" validate:"omitempty,oneof=draft published archived"`
	Categories  []string         `json:"categories" form:"categories" validate:"omitempty,dive,uuid"`
	Tags        []string         `json:"tags" form:"tags" validate:"omitempty,dive,uuid"`
	ImageAlt    string           `json:"imageAlt" form:"imageAlt" validate:"max=255"`
	SEO         SEORequest       `json:"seo"`
}

// UpdatePostRequest is the body of PUT /posts/:id. Absent fields are unchanged;
// an empty categories or tags array clears the association. Author and SEO
// fields are patched one by one.
type UpdatePostRequest struct {
	Title       *string           `json:"title" form:"title" validate:"omitempty,min=1,max=200"`
	Excerpt     *string           `json:"excerpt" form:"excerpt" validate:"omitempty,min=1,max=500"`
	Content     *string           `json:"content" form:"content" validate:"omitempty,min=1"`
	AuthorName  *string           `json:"authorName" form:"authorName" validate:"omitempty,min=1,max=100"`
	AuthorEmail *string           `json:"authorEmail" form:"authorEmail" validate:"omitempty,email"`
	Status      *model.PostStatus `json:"status" form:"status" validate:"omitempty,oneof=draft published archived"`
	Categories  []string          `json:"categories" form:"categories" validate:"omitempty,dive,uuid"`
	Tags        []string          `json:"tags" form:"tags" validate:"omitempty,dive,uuid"`
	ImageAlt    *string           `json:"imageAlt" form:"imageAlt" validate:"omitempty,max=255"`
	SEO         *SEOPatchRequest  `json:"seo"`
}

// PostDetail is the payload of GET /posts/:slug.
type PostDetail struct {
	Post         *model.Post  `json:"post"`
	RelatedPosts []model.Post `json:"relatedPosts"`
}

// List godoc
// @Summary List published posts
// @Tags posts
// @Produce json
// @Param page query int false "Page number" minimum(1)
// @Param limit query int false "Page size" minimum(1) maximum(50)
// @Param category query string false "Category id"
// @Param tag query string false "Tag id"
// @Param search query string false "Full-text search" minlength(2)
// @Param sortBy query string false "Sort field, '-' prefix for descending" default(-publishedAt)
// @Success 200 {object} Envelope{data=model.PostPage}
// @Failure 400 {object} errors.ErrorResponse
// @Router /posts [get]
func (h *PostHandler) List(c echo.Context) error {
	var req ListPostsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	page, err := h.postService.ListPublished(c.Request().Context(), req.query())
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "", page)
}

// ListAll godoc
// @Summary List posts in any status
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter" Enums(draft, published, archived)
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} Envelope{data=model.PostPage}
// @Failure 401 {object} errors.ErrorResponse
// @Router /posts/admin [get]
func (h *PostHandler) ListAll(c echo.Context) error {
	var req ListPostsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	page, err := h.postService.ListAll(c.Request().Context(), req.query())
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "", page)
}

// Featured godoc
// @Summary Most viewed published posts
// @Tags posts
// @Produce json
// @Success 200 {object} Envelope{data=[]model.Post}
// @Router /posts/featured [get]
func (h *PostHandler) Featured(c echo.Context) error {
	posts, err := h.postService.Featured(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "", posts)
}

// Stats godoc
// @Summary Post statistics
// @Tags posts
// @Produce json
// @Success 200 {object} Envelope{data=model.PostStats}
// @Router /posts/stats/summary [get]
func (h *PostHandler) Stats(c echo.Context) error {
	stats, err := h.postService.Stats(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "", stats)
}

// GetBySlug godoc
// @Summary Get a published post
// @Description Counts one view and returns up to four related posts.
// @Tags posts
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} Envelope{data=PostDetail}
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{slug} [get]
func (h *PostHandler) GetBySlug(c echo.Context) error {
	post, related, err := h.postService.GetPublished(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return fail(err)
	}
	if related == nil {
		related = []model.Post{}
	}
	return respond(c, http.StatusOK, "", PostDetail{Post: post, RelatedPosts: related})
}

// GetByID godoc
// @Summary Get a post by id in any status
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} Envelope{data=model.Post}
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/id/{id} [get]
func (h *PostHandler) GetByID(c echo.Context) error {
	post, err := h.postService.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "", post)
}

// Create godoc
// @Summary Create a post
// @Description Accepts JSON, or multipart form data with an optional featuredImage file.
// @Tags posts
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param request body CreatePostRequest true "Post"
// @Param featuredImage formData file false "Featured image"
// @Success 201 {object} Envelope{data=model.Post}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /posts [post]
func (h *PostHandler) Create(c echo.Context) error {
	var req CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	image, err := optionalFile(c, "featuredImage")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	author, err := h.author(c, req.AuthorName, req.AuthorEmail)
	if err != nil {
		return fail(err)
	}

	post, err := h.postService.Create(ctx, service.CreatePostInput{
		Title:       req.Title,
		Slug:        req.Slug,
		Excerpt:     req.Excerpt,
		Content:     req.Content,
		Author:      author,
		Status:      req.Status,
		CategoryIDs: req.Categories,
		TagIDs:      req.Tags,
		SEO:         req.SEO.model(),
		Image:       image,
		ImageAlt:    req.ImageAlt,
	})
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusCreated, "Post created successfully", post)
}

// Update godoc
// @Summary Update a post
// @Description Partial update. A new featuredImage replaces and deletes the previous one.
// @Tags posts
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body UpdatePostRequest true "Fields to change"
// @Param featuredImage formData file false "Replacement image"
// @Success 200 {object} Envelope{data=model.Post}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id} [put]
func (h *PostHandler) Update(c echo.Context) error {
	var req UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(err)
	}
	seo, err := formSEO(c)
	if err != nil {
		return badRequest(err)
	}
	if seo != nil {
		req.SEO = seo
	}
	if err := c.Validate(&req); err != nil {
		return fail(err)
	}
	image, err := optionalFile(c, "featuredImage")
	if err != nil {
		return err
	}

	patch := model.PostPatch{
		Title:       req.Title,
		Excerpt:     req.Excerpt,
		Content:     req.Content,
		AuthorName:  req.AuthorName,
		AuthorEmail: req.AuthorEmail,
		Status:      req.Status,
		CategoryIDs: req.Categories,
		TagIDs:      req.Tags,
	}
	if req.SEO != nil {
		patch.SEOMetaTitle = req.SEO.MetaTitle
		patch.SEODesc = req.SEO.MetaDescription
		patch.SEOKeywords = req.SEO.Keywords
	}

	post, err := h.postService.Update(c.Request().Context(), c.Param("id"), service.UpdatePostInput{
		Patch:    patch,
		Image:    image,
		ImageAlt: req.ImageAlt,
	})
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "Post updated successfully", post)
}

// Delete godoc
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} Envelope
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id} [delete]
func (h *PostHandler) Delete(c echo.Context) error {
	if err := h.postService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "Post deleted successfully", nil)
}

// author fills the byline from the request, falling back to the current user.
func (h *PostHandler) author(c echo.Context, name, email string) (model.Author, error) {
	user, err := h.authService.CurrentUser(c.Request().Context(), userID(c))
	if err != nil {
		return model.Author{}, err
	}
	author := model.Author{Name: user.Name, Email: user.Email, UserID: user.ID}
	if name != "" {
		author.Name = name
	}
	if email != "" {
		author.Email = email
	}
	return author, nil
}
