package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/communityfeed/internal/server/services"
)

type createPostRequest struct {
	Body       *string `json:"body"`
	ImageURL   *string `json:"image_url"`
	Visibility string  `json:"visibility" binding:"visibility"`
}

type createCommentRequest struct {
	Body *string `json:"body"`
}

type createReportRequest struct {
	TargetType string  `json:"target_type" binding:"required"`
	TargetID   string  `json:"target_id" binding:"required"`
	Reason     *string `json:"reason"`
}

func (h *Handler) CreatePost(c *gin.Context) {
	var req createPostRequest
	if !bindJSON(c, &req, true) {
		return
	}

	post, err := h.posts.CreatePost(c.Request.Context(), userID(c), services.PostInput{
		Body:       req.Body,
		ImageURL:   req.ImageURL,
		Visibility: req.Visibility,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.metrics.PostsCreated.Inc()
	c.JSON(http.StatusCreated, post)
}

func (h *Handler) GetPost(c *gin.Context) {
	post, err := h.posts.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Feed serves GET /api/feed. A missing or non-numeric limit means the
// default page size.
func (h *Handler) Feed(c *gin.Context) {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		limit = 0
	}

	if id := userID(c); id != "" {
		h.logger.Debug(c.Request.Context(), "feed requested", "user_id", id)
	}

	items, err := h.feed.GetFeed(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateComment(c *gin.Context) {
	var req createCommentRequest
	if !bindJSON(c, &req, true) {
		return
	}

	comment, err := h.posts.CreateComment(c.Request.Context(), c.Param("id"), userID(c), req.Body)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.metrics.CommentsCreated.Inc()
	c.JSON(http.StatusCreated, comment)
}

func (h *Handler) ListComments(c *gin.Context) {
	list, err := h.posts.ListComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) ToggleLike(c *gin.Context) {
	postID := c.Param("id")

	liked, err := h.reactions.ToggleLike(c.Request.Context(), postID, userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.metrics.RecordLike(liked)

	count, err := h.reactions.LikesCount(c.Request.Context(), postID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked, "likes_count": count})
}

func (h *Handler) CreateReport(c *gin.Context) {
	var req createReportRequest
	if !bindJSON(c, &req, false) {
		return
	}

	report, err := h.posts.CreateReport(c.Request.Context(), userID(c), services.ReportInput{
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		Reason:     req.Reason,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "ts": h.now().UTC()})
}
