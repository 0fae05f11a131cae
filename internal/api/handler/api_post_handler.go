package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/inklet/inklet/internal/middleware"
	"github.com/inklet/inklet/internal/service"
	"github.com/inklet/inklet/pkg/response"
)

type postRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body"`
}

// bindErrorMessage keeps API validation wording aligned with the web forms.
func bindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Field() {
		case "Title":
			return "Title is required."
		case "Username":
			return "Username is required."
		case "Password":
			return "Password is required."
		}
	}
	return err.Error()
}

// APIListPosts lists all posts, newest first.
// @Summary List posts
// @Tags posts
// @Produce json
// @Success 200 {object} response.Response{data=[]repository.FeedRow}
// @Router /posts [get]
func (h *Handler) APIListPosts(c *gin.Context) {
	rows, err := h.posts.Feed(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, rows)
}

// APIGetPost fetches one post with author and reaction count.
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path string true "post id"
// @Success 200 {object} response.Response{data=repository.FeedRow}
// @Failure 404 {object} response.Response
// @Router /posts/{id} [get]
func (h *Handler) APIGetPost(c *gin.Context) {
	row, err := h.posts.GetDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.NotFound(c, "post not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, row)
}

// APICreatePost creates a post authored by the token's user.
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body postRequest true "post"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /posts [post]
func (h *Handler) APICreatePost(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)

	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrorMessage(err))
		return
	}
	p, err := h.posts.Create(c.Request.Context(), u.ID, req.Title, req.Body)
	if err != nil {
		if errors.Is(err, service.ErrTitleRequired) {
			response.BadRequest(c, "Title is required.")
			return
		}
		response.InternalError(c, err)
		return
	}
	h.metrics.PostsCreated.Inc()
	response.Created(c, gin.H{"id": p.ID})
}

// APIUpdatePost edits title/body, author only.
// @Summary Update a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "post id"
// @Param request body postRequest true "post"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /posts/{id} [put]
func (h *Handler) APIUpdatePost(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)

	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrorMessage(err))
		return
	}
	err := h.posts.Update(c.Request.Context(), c.Param("id"), u.ID, req.Title, req.Body)
	switch {
	case err == nil:
		response.Success(c, nil)
	case errors.Is(err, service.ErrPostNotFound):
		response.NotFound(c, "post not found")
	case errors.Is(err, service.ErrNotPostAuthor):
		response.Forbidden(c, "not the post author")
	case errors.Is(err, service.ErrTitleRequired):
		response.BadRequest(c, "Title is required.")
	default:
		response.InternalError(c, err)
	}
}

// APIDeletePost deletes a post and its reactions, author only.
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "post id"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /posts/{id} [delete]
func (h *Handler) APIDeletePost(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)

	err := h.posts.Delete(c.Request.Context(), c.Param("id"), u.ID)
	switch {
	case err == nil:
		h.metrics.PostsDeleted.Inc()
		response.Success(c, nil)
	case errors.Is(err, service.ErrPostNotFound):
		response.NotFound(c, "post not found")
	case errors.Is(err, service.ErrNotPostAuthor):
		response.Forbidden(c, "not the post author")
	default:
		response.InternalError(c, err)
	}
}

// APIReact adds the caller's reaction to a post.
// @Summary React to a post
// @Tags reactions
// @Produce json
// @Security BearerAuth
// @Param id path string true "post id"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /posts/{id}/react [post]
func (h *Handler) APIReact(c *gin.Context) {
	h.apiToggleReaction(c, true)
}

// APIUnreact removes the caller's reaction from a post.
// @Summary Remove a reaction
// @Tags reactions
// @Produce json
// @Security BearerAuth
// @Param id path string true "post id"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /posts/{id}/react [delete]
func (h *Handler) APIUnreact(c *gin.Context) {
	h.apiToggleReaction(c, false)
}

func (h *Handler) apiToggleReaction(c *gin.Context, on bool) {
	u, _ := middleware.CurrentUser(c)
	postID := c.Param("id")

	var err error
	if on {
		err = h.reactions.React(c.Request.Context(), postID, u.ID)
	} else {
		err = h.reactions.Unreact(c.Request.Context(), postID, u.ID)
	}
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.NotFound(c, "post not found")
			return
		}
		response.InternalError(c, err)
		return
	}

	action := "react"
	if !on {
		action = "unreact"
	}
	h.metrics.Reactions.WithLabelValues(action).Inc()

	count, err := h.reactions.Count(c.Request.Context(), postID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"reacted": on, "count": count})
}
