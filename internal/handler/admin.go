package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kitmoji/api/internal/cache"
	"github.com/kitmoji/api/internal/store"
)

type AdminHandler struct {
	store *store.Store
	cache *cache.RedisCache
}

func NewAdminHandler(s *store.Store, redisCache *cache.RedisCache) *AdminHandler {
	return &AdminHandler{store: s, cache: redisCache}
}

// Create handles POST /api/admin/emojis. Derived columns (type, skin
// tone, base unicode) are computed server-side from the unicode field.
func (h *AdminHandler) Create(c *gin.Context) {
	var in store.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	emoji, err := h.store.Create(c.Request.Context(), in)
	if err != nil {
		h.storeError(c, err)
		return
	}

	h.invalidateCaches(c)
	c.JSON(http.StatusCreated, emoji)
}

func (h *AdminHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Emoji not found"})
		return
	}

	var in store.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	emoji, err := h.store.Update(c.Request.Context(), id, in)
	if err != nil {
		h.storeError(c, err)
		return
	}

	h.invalidateCaches(c)
	c.JSON(http.StatusOK, emoji)
}

func (h *AdminHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Emoji not found"})
		return
	}

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		h.storeError(c, err)
		return
	}

	h.invalidateCaches(c)
	c.JSON(http.StatusOK, gin.H{"message": "Emoji deleted"})
}

// FixEmojis re-renders the emoji character column from stored unicode
// sequences. Used after bulk imports that left placeholder characters.
func (h *AdminHandler) FixEmojis(c *gin.Context) {
	fixed, err := h.store.FixEmojiColumns(c.Request.Context())
	if err != nil {
		h.serverError(c, "Failed to fix emoji columns", err)
		return
	}

	h.invalidateCaches(c)
	c.JSON(http.StatusOK, gin.H{
		"message": "Emoji columns updated",
		"fixed":   fixed,
	})
}

// Slug and sitemap caches go stale whenever the dataset changes.
func (h *AdminHandler) invalidateCaches(c *gin.Context) {
	if h.cache == nil {
		return
	}
	ctx := c.Request.Context()
	if err := h.cache.DeletePrefix(ctx, "emoji:slug:"); err != nil {
		log.Printf("cache invalidation failed: %v", err)
	}
	if err := h.cache.Delete(ctx, cache.SitemapKey); err != nil {
		log.Printf("cache invalidation failed: %v", err)
	}
}

func (h *AdminHandler) storeError(c *gin.Context, err error) {
	var verr *store.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Emoji not found"})
	case errors.Is(err, store.ErrDuplicateUnicode):
		c.JSON(http.StatusConflict, gin.H{"error": "Emoji with this Unicode already exists"})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	default:
		h.serverError(c, "Internal server error", err)
	}
}

func (h *AdminHandler) serverError(c *gin.Context, msg string, err error) {
	log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
