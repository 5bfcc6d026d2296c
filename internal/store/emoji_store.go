// Package store is the query and mutation surface over the emojis table.
// All operations are single round trips against the database; the only
// read-modify-write visible to concurrent users (the copy counter) is
// expressed as an atomic UPDATE.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/kitmoji/api/internal/config"
	"github.com/kitmoji/api/internal/database"
	"github.com/kitmoji/api/internal/emojidata"
	"github.com/kitmoji/api/internal/model"
	"github.com/kitmoji/api/internal/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound         = errors.New("emoji not found")
	ErrDuplicateUnicode = errors.New("emoji with this unicode already exists")
)

// ValidationError reports a missing required field on create.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

const (
	DefaultLimit = 50
	MaxLimit     = 200
	newPageSize  = 50
)

type Store struct {
	db           *gorm.DB
	curated      config.Curated
	hasCopyCount bool
}

// New checks the schema once at construction; deployments that predate the
// copy_count column keep serving with a zero counter instead of erroring.
func New(db *gorm.DB, curated config.Curated) *Store {
	hasCopyCount := database.HasCopyCount(db)
	if !hasCopyCount {
		log.Println("copy_count column not present, copy tracking degraded to zero values")
	}
	return &Store{db: db, curated: curated, hasCopyCount: hasCopyCount}
}

// writer returns the session for insert/update statements. On a schema
// without copy_count the column must be omitted or GORM would include it
// in the generated SQL and fail the whole write.
func (s *Store) writer(ctx context.Context) *gorm.DB {
	db := s.db.WithContext(ctx)
	if !s.hasCopyCount {
		db = db.Omit("CopyCount")
	}
	return db
}

// ListOptions are the recognized query parameters for List. Zero values
// mean "no filter"; Page and Limit are clamped rather than rejected.
type ListOptions struct {
	Search   string
	Category string
	Status   string
	Page     int
	Limit    int
}

type Page struct {
	Emojis     []model.Emoji `json:"emojis"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"totalPages"`
}

// List returns one page of emojis matching the filters, ordered by name.
func (s *Store) List(ctx context.Context, opts ListOptions) (*Page, error) {
	page := opts.Page
	if page < 1 {
		page = 1
	}
	limit := opts.Limit
	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}

	query := s.db.WithContext(ctx).Model(&model.Emoji{})

	if opts.Search != "" {
		pattern := "%" + strings.ToLower(opts.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(keywords) LIKE ?", pattern, pattern)
	}
	if opts.Category != "" {
		query = query.Where("LOWER(category) LIKE ?", "%"+strings.ToLower(opts.Category)+"%")
	}
	status := opts.Status
	if status == "" {
		status = model.StatusFullyQualified
	}
	if status != "all" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	emojis := make([]model.Emoji, 0, limit)
	err := query.Order("name ASC, id ASC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&emojis).Error
	if err != nil {
		return nil, err
	}

	return &Page{
		Emojis:     emojis,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*model.Emoji, error) {
	var e model.Emoji
	if err := s.db.WithContext(ctx).First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// GetBySlug resolves an SEO slug back to a row. Exact matches against the
// generated name candidates are tried first; the substring fallback orders
// exact-match-first, then shortest name, then lowest id, so that duplicate
// display names resolve deterministically.
func (s *Store) GetBySlug(ctx context.Context, slugParam string) (*model.Emoji, error) {
	for _, candidate := range slug.Candidates(slugParam) {
		var e model.Emoji
		err := s.db.WithContext(ctx).
			Where("LOWER(name) = ?", strings.ToLower(candidate)).
			Order("id ASC").
			First(&e).Error
		if err == nil {
			return &e, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	// Fallback: substring match on the space-joined slug.
	q := strings.ToLower(strings.ReplaceAll(slugParam, "-", " "))
	var e model.Emoji
	err := s.db.WithContext(ctx).Raw(`
		SELECT * FROM emojis
		WHERE LOWER(name) LIKE ?
		ORDER BY CASE WHEN LOWER(name) = ? THEN 1 ELSE 2 END, LENGTH(name), id
		LIMIT 1
	`, "%"+q+"%", q).Scan(&e).Error
	if err != nil {
		return nil, err
	}
	if e.ID == 0 {
		return nil, ErrNotFound
	}
	return &e, nil
}

// Popular returns the rows for the curated popular list, in list order.
func (s *Store) Popular(ctx context.Context) ([]model.Emoji, error) {
	if len(s.curated.PopularEmojis) == 0 {
		return []model.Emoji{}, nil
	}

	var rows []model.Emoji
	err := s.db.WithContext(ctx).
		Where("emoji IN ?", s.curated.PopularEmojis).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	// Result order follows the curated list, not name order. Rows sharing a
	// character collapse to the lowest id.
	byEmoji := make(map[string]model.Emoji, len(rows))
	for _, row := range rows {
		if _, ok := byEmoji[row.Emoji]; !ok {
			byEmoji[row.Emoji] = row
		}
	}
	ordered := make([]model.Emoji, 0, len(rows))
	for _, want := range s.curated.PopularEmojis {
		if row, ok := byEmoji[want]; ok {
			ordered = append(ordered, row)
		}
	}
	return ordered, nil
}

// New returns emojis introduced in the curated recent Unicode releases,
// newest release first.
func (s *Store) New(ctx context.Context) ([]model.Emoji, error) {
	if len(s.curated.NewVersions) == 0 {
		return []model.Emoji{}, nil
	}

	rows := make([]model.Emoji, 0, newPageSize)
	err := s.db.WithContext(ctx).
		Where("unicode_version IN ?", s.curated.NewVersions).
		Order("unicode_version DESC, name ASC").
		Limit(newPageSize).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Categories returns the distinct non-empty category values, sorted.
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	categories := make([]string, 0, 16)
	err := s.db.WithContext(ctx).Model(&model.Emoji{}).
		Distinct("category").
		Where("category IS NOT NULL AND category <> ''").
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// IncrementCopyCount bumps the counter in a single atomic UPDATE and
// returns the new value. With the column absent it reports 0.
func (s *Store) IncrementCopyCount(ctx context.Context, id int64) (int64, error) {
	if !s.hasCopyCount {
		if _, err := s.GetByID(ctx, id); err != nil {
			return 0, err
		}
		return 0, nil
	}

	result := s.db.WithContext(ctx).Model(&model.Emoji{}).
		Where("id = ?", id).
		UpdateColumn("copy_count", gorm.Expr("COALESCE(copy_count, 0) + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrNotFound
	}

	return s.CopyCount(ctx, id)
}

// CopyCount reads the current counter, 0 when the column is absent.
func (s *Store) CopyCount(ctx context.Context, id int64) (int64, error) {
	if !s.hasCopyCount {
		if _, err := s.GetByID(ctx, id); err != nil {
			return 0, err
		}
		return 0, nil
	}

	var e model.Emoji
	err := s.db.WithContext(ctx).Select("id, copy_count").First(&e, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return e.CopyCount, nil
}

// CreateInput carries the writable fields for admin create/update. Derived
// fields (emoji_type, base_unicode, skin_tone, rendered emoji) are always
// recomputed from unicode, never trusted from the caller.
type CreateInput struct {
	Emoji          string `json:"emoji"`
	Name           string `json:"name" binding:"required"`
	Keywords       string `json:"keywords"`
	Category       string `json:"category" binding:"required"`
	Subcategory    string `json:"subcategory"`
	Unicode        string `json:"unicode" binding:"required"`
	UnicodeVersion string `json:"unicode_version"`
	Status         string `json:"status"`
	HairStyle      string `json:"hair_style"`
}

func (in *CreateInput) validate() error {
	switch {
	case in.Name == "":
		return &ValidationError{Field: "name"}
	case in.Category == "":
		return &ValidationError{Field: "category"}
	case in.Unicode == "":
		return &ValidationError{Field: "unicode"}
	}
	return nil
}

func (s *Store) Create(ctx context.Context, in CreateInput) (*model.Emoji, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	version := in.UnicodeVersion
	if version == "" {
		version = "unknown"
	}
	status := in.Status
	if status == "" {
		status = model.StatusFullyQualified
	}

	record := emojidata.NewRecord(in.Unicode, in.Name, in.Keywords, in.Category, in.Subcategory, version, status)
	record.HairStyle = in.HairStyle
	if in.Emoji != "" {
		record.Emoji = in.Emoji
	}

	if err := s.writer(ctx).Create(&record).Error; err != nil {
		if isDuplicateErr(err) {
			return nil, ErrDuplicateUnicode
		}
		return nil, err
	}
	return &record, nil
}

func (s *Store) Update(ctx context.Context, id int64, in CreateInput) (*model.Emoji, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Unicode != "" {
		existing.Unicode = strings.Join(emojidata.Tokens(in.Unicode), " ")
		existing.EmojiType = emojidata.DeriveType(existing.Unicode)
		existing.BaseUnicode = emojidata.BaseUnicode(existing.Unicode)
		existing.SkinTone = emojidata.DeriveSkinTone(existing.Unicode)
		existing.Emoji = emojidata.RenderFull(existing.Unicode)
	}
	if in.Emoji != "" {
		existing.Emoji = in.Emoji
	}
	if in.Name != "" {
		existing.Name = in.Name
	}
	if in.Keywords != "" {
		existing.Keywords = in.Keywords
	}
	if in.Category != "" {
		existing.Category = in.Category
	}
	if in.Subcategory != "" {
		existing.Subcategory = in.Subcategory
	}
	if in.UnicodeVersion != "" {
		existing.UnicodeVersion = in.UnicodeVersion
	}
	if in.Status != "" {
		existing.Status = in.Status
	}
	if in.HairStyle != "" {
		existing.HairStyle = in.HairStyle
	}

	if err := s.writer(ctx).Save(existing).Error; err != nil {
		if isDuplicateErr(err) {
			return nil, ErrDuplicateUnicode
		}
		return nil, err
	}
	return existing, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&model.Emoji{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the total number of rows, used by the health endpoint.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&model.Emoji{}).Count(&total).Error
	return total, err
}

// SeedBatch inserts records, silently skipping rows whose unicode already
// exists. Returns the number actually inserted, so re-running a seed is a
// no-op for present rows.
func (s *Store) SeedBatch(ctx context.Context, batch []model.Emoji) (int64, error) {
	if len(batch) == 0 {
		return 0, nil
	}
	result := s.writer(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&batch)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// MarkVariationBases flags base rows that have skin-tone variants
// elsewhere in the table. Idempotent.
func (s *Store) MarkVariationBases(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Exec(`
		UPDATE emojis SET has_variations = ?
		WHERE unicode IN (SELECT base_unicode FROM emojis WHERE skin_tone <> '')
	`, true)
	return result.RowsAffected, result.Error
}

// FixEmojiColumns re-renders the emoji character column from the stored
// codepoints, repairing rows corrupted by encoding issues or stored
// without their variation selectors. Per-row failures are logged and
// skipped.
func (s *Store) FixEmojiColumns(ctx context.Context) (int64, error) {
	var rows []model.Emoji
	if err := s.db.WithContext(ctx).Select("id, unicode, emoji").Order("id ASC").Find(&rows).Error; err != nil {
		return 0, err
	}

	var fixed int64
	for _, row := range rows {
		want := emojidata.RenderFull(row.Unicode)
		if row.Emoji == want {
			continue
		}
		err := s.db.WithContext(ctx).Model(&model.Emoji{}).
			Where("id = ?", row.ID).
			UpdateColumn("emoji", want).Error
		if err != nil {
			log.Printf("Failed to fix emoji %d: %v", row.ID, err)
			continue
		}
		fixed++
	}
	return fixed, nil
}

// ReassignCategory moves the named emojis into a category. Idempotent
// maintenance operation (e.g. heart symbols into "Symbols").
func (s *Store) ReassignCategory(ctx context.Context, names []string, category string) (int64, error) {
	var updated int64
	for _, name := range names {
		result := s.db.WithContext(ctx).Model(&model.Emoji{}).
			Where("LOWER(name) = ? AND category <> ?", strings.ToLower(name), category).
			UpdateColumn("category", category)
		if result.Error != nil {
			log.Printf("Failed to reassign %q: %v", name, result.Error)
			continue
		}
		updated += result.RowsAffected
	}
	return updated, nil
}

// All streams every row ordered by id, for the sitemap and exports.
func (s *Store) All(ctx context.Context) ([]model.Emoji, error) {
	var rows []model.Emoji
	err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}

func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
