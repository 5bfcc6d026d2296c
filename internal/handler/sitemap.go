package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kitmoji/api/internal/cache"
	"github.com/kitmoji/api/internal/middleware"
	"github.com/kitmoji/api/internal/sitemap"
	"github.com/kitmoji/api/internal/store"
)

const sitemapCacheTTL = 24 * time.Hour

type SitemapHandler struct {
	store   *store.Store
	cache   *cache.RedisCache
	baseURL string
}

func NewSitemapHandler(s *store.Store, redisCache *cache.RedisCache, baseURL string) *SitemapHandler {
	return &SitemapHandler{store: s, cache: redisCache, baseURL: baseURL}
}

// Serve handles GET /sitemap.xml. The rendered document is cached for a
// day; crawlers re-fetch far less often than the dataset changes.
func (h *SitemapHandler) Serve(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=86400")

	if h.cache != nil {
		if cached, err := h.cache.Get(c.Request.Context(), cache.SitemapKey); err == nil {
			middleware.RecordSitemapBuild("cached")
			c.Data(http.StatusOK, "application/xml; charset=utf-8", cached)
			return
		}
	}

	body := sitemap.Build(c.Request.Context(), h.store, h.baseURL, time.Now())
	middleware.RecordSitemapBuild("built")

	if h.cache != nil {
		h.cache.Set(c.Request.Context(), cache.SitemapKey, body, sitemapCacheTTL)
	}

	c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}
