package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kitmoji/api/internal/cache"
	"github.com/kitmoji/api/internal/middleware"
	"github.com/kitmoji/api/internal/model"
	"github.com/kitmoji/api/internal/store"
)

const slugCacheTTL = time.Hour

type EmojiHandler struct {
	store *store.Store
	cache *cache.RedisCache
}

func NewEmojiHandler(s *store.Store, redisCache *cache.RedisCache) *EmojiHandler {
	return &EmojiHandler{store: s, cache: redisCache}
}

// Health reports liveness plus the dataset size.
func (h *EmojiHandler) Health(c *gin.Context) {
	total, err := h.store.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ERROR",
			"message": "Database connection error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "OK",
		"message":     "Kitmoji API running - Ready!",
		"totalEmojis": total,
	})
}

// List handles GET /api/emojis with search, category, status, page, limit.
// Malformed pagination values clamp to defaults rather than erroring.
func (h *EmojiHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	result, err := h.store.List(c.Request.Context(), store.ListOptions{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		h.serverError(c, "Failed to fetch emojis", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *EmojiHandler) Popular(c *gin.Context) {
	rows, err := h.store.Popular(c.Request.Context())
	if err != nil {
		h.serverError(c, "Failed to fetch popular emojis", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"emojis": rows,
		"total":  len(rows),
	})
}

func (h *EmojiHandler) New(c *gin.Context) {
	rows, err := h.store.New(c.Request.Context())
	if err != nil {
		h.serverError(c, "Failed to fetch new emojis", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"emojis": rows,
		"total":  len(rows),
	})
}

func (h *EmojiHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Emoji not found"})
		return
	}

	emoji, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		middleware.RecordLookup("id", false)
		h.storeError(c, err)
		return
	}

	middleware.RecordLookup("id", true)
	c.JSON(http.StatusOK, emoji)
}

// GetByName resolves an SEO slug (GET /api/emoji/:name). Results are
// cached in Redis since slugs are hot from search-engine traffic.
func (h *EmojiHandler) GetByName(c *gin.Context) {
	name := c.Param("name")
	cacheKey := cache.SlugKey(name)

	if h.cache != nil {
		if cached, err := h.cache.Get(c.Request.Context(), cacheKey); err == nil {
			var emoji model.Emoji
			if err := json.Unmarshal(cached, &emoji); err == nil {
				middleware.RecordLookup("slug", true)
				c.JSON(http.StatusOK, emoji)
				return
			}
		}
	}

	emoji, err := h.store.GetBySlug(c.Request.Context(), name)
	if err != nil {
		middleware.RecordLookup("slug", false)
		h.storeError(c, err)
		return
	}

	if h.cache != nil {
		if body, err := json.Marshal(emoji); err == nil {
			h.cache.Set(c.Request.Context(), cacheKey, body, slugCacheTTL)
		}
	}

	middleware.RecordLookup("slug", true)
	c.JSON(http.StatusOK, emoji)
}

// Copy handles POST /api/emoji/:name/copy with a single atomic
// increment. The :name wildcard is shared with the slug route; here it
// carries the numeric id.
func (h *EmojiHandler) Copy(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("name"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Emoji not found"})
		return
	}

	count, err := h.store.IncrementCopyCount(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, err)
		return
	}

	middleware.RecordCopy()
	c.JSON(http.StatusOK, gin.H{"copy_count": count})
}

func (h *EmojiHandler) CopyCount(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("name"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Emoji not found"})
		return
	}

	count, err := h.store.CopyCount(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"copy_count": count})
}

func (h *EmojiHandler) Categories(c *gin.Context) {
	categories, err := h.store.Categories(c.Request.Context())
	if err != nil {
		h.serverError(c, "Failed to fetch categories", err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

// storeError maps domain errors onto status codes; infrastructure errors
// are logged and hidden behind a generic message.
func (h *EmojiHandler) storeError(c *gin.Context, err error) {
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

func (h *EmojiHandler) serverError(c *gin.Context, msg string, err error) {
	log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
