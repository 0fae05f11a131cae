package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inklet/inklet/internal/middleware"
	"github.com/inklet/inklet/internal/service"
)

// Index lists all posts, newest first. No auth required.
func (h *Handler) Index(c *gin.Context) {
	rows, err := h.posts.Feed(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.render(c, http.StatusOK, "index.html", gin.H{"Posts": rows})
}

// Detail shows one post with its reaction state for the viewing user.
func (h *Handler) Detail(c *gin.Context) {
	id := c.Param("id")
	row, err := h.posts.GetDetail(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			h.notFound(c)
			return
		}
		h.serverError(c, err)
		return
	}

	reacted := false
	if u, ok := middleware.CurrentUser(c); ok {
		reacted, err = h.reactions.HasReacted(c.Request.Context(), id, u.ID)
		if err != nil {
			h.serverError(c, err)
			return
		}
	}
	count, err := h.reactions.Count(c.Request.Context(), id)
	if err != nil {
		h.serverError(c, err)
		return
	}

	h.render(c, http.StatusOK, "detail.html", gin.H{
		"Post":    row,
		"Reacted": reacted,
		"Count":   count,
	})
}

func (h *Handler) CreateForm(c *gin.Context) {
	h.render(c, http.StatusOK, "create.html", gin.H{"Title": "", "Body": ""})
}

func (h *Handler) Create(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)
	title := c.PostForm("title")
	body := c.PostForm("body")

	_, err := h.posts.Create(c.Request.Context(), u.ID, title, body)
	switch {
	case err == nil:
		h.metrics.PostsCreated.Inc()
		c.Redirect(http.StatusFound, "/")
	case errors.Is(err, service.ErrTitleRequired):
		h.flash(c, "Title is required.")
		h.render(c, http.StatusOK, "create.html", gin.H{"Title": title, "Body": body})
	default:
		h.serverError(c, err)
	}
}

func (h *Handler) UpdateForm(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)
	p, err := h.posts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			h.notFound(c)
			return
		}
		h.serverError(c, err)
		return
	}
	if p.AuthorID != u.ID {
		h.forbidden(c)
		return
	}
	h.render(c, http.StatusOK, "update.html", gin.H{
		"PostID": p.ID,
		"Title":  p.Title,
		"Body":   p.Body,
	})
}

func (h *Handler) Update(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)
	id := c.Param("id")
	title := c.PostForm("title")
	body := c.PostForm("body")

	err := h.posts.Update(c.Request.Context(), id, u.ID, title, body)
	switch {
	case err == nil:
		c.Redirect(http.StatusFound, "/")
	case errors.Is(err, service.ErrPostNotFound):
		h.notFound(c)
	case errors.Is(err, service.ErrNotPostAuthor):
		h.forbidden(c)
	case errors.Is(err, service.ErrTitleRequired):
		h.flash(c, "Title is required.")
		h.render(c, http.StatusOK, "update.html", gin.H{"PostID": id, "Title": title, "Body": body})
	default:
		h.serverError(c, err)
	}
}

// Delete removes the post and its reactions, then sends the author home.
func (h *Handler) Delete(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)
	err := h.posts.Delete(c.Request.Context(), c.Param("id"), u.ID)
	switch {
	case err == nil:
		h.metrics.PostsDeleted.Inc()
		c.Redirect(http.StatusFound, "/")
	case errors.Is(err, service.ErrPostNotFound):
		h.notFound(c)
	case errors.Is(err, service.ErrNotPostAuthor):
		h.forbidden(c)
	default:
		h.serverError(c, err)
	}
}
