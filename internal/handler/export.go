package handler

import (
	"bytes"
	"encoding/csv"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kitmoji/api/internal/model"
	"github.com/kitmoji/api/internal/store"
)

type ExportHandler struct {
	store *store.Store
}

func NewExportHandler(s *store.Store) *ExportHandler {
	return &ExportHandler{store: s}
}

// Export dumps the full emoji dataset for backups and offline analysis.
// GET /api/admin/export?format=json|csv
func (h *ExportHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "json")

	emojis, err := h.store.All(c.Request.Context())
	if err != nil {
		log.Printf("export failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export emojis"})
		return
	}

	switch format {
	case "json":
		h.exportJSON(c, emojis)
	case "csv":
		h.exportCSV(c, emojis)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid format. Use json or csv"})
	}
}

func (h *ExportHandler) exportJSON(c *gin.Context, emojis []model.Emoji) {
	c.Header("Content-Disposition", "attachment; filename=emojis.json")
	c.JSON(http.StatusOK, gin.H{
		"total":  len(emojis),
		"emojis": emojis,
	})
}

func (h *ExportHandler) exportCSV(c *gin.Context, emojis []model.Emoji) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	writer.Write([]string{
		"ID", "Emoji", "Name", "Keywords", "Category", "Subcategory",
		"Unicode", "Version", "Status", "Type", "CopyCount",
	})

	for _, e := range emojis {
		writer.Write([]string{
			strconv.FormatInt(e.ID, 10),
			e.Emoji,
			e.Name,
			e.Keywords,
			e.Category,
			e.Subcategory,
			e.Unicode,
			e.UnicodeVersion,
			e.Status,
			e.EmojiType,
			strconv.FormatInt(e.CopyCount, 10),
		})
	}

	writer.Flush()

	c.Header("Content-Disposition", "attachment; filename=emojis.csv")
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}
