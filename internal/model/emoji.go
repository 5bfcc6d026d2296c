package model

import (
	"time"
)

// Emoji is one row per distinct emoji rendering: base emoji, skin-tone
// variant, flag, or ZWJ sequence. The unicode codepoint sequence is the
// natural key; id exists for URL-stable lookups.
type Emoji struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Emoji          string    `gorm:"not null" json:"emoji"`
	Name           string    `gorm:"index;not null" json:"name"`
	Keywords       string    `json:"keywords"`
	Category       string    `gorm:"index;not null" json:"category"`
	Subcategory    string    `json:"subcategory"`
	Unicode        string    `gorm:"uniqueIndex;not null" json:"unicode"`
	UnicodeVersion string    `json:"unicode_version"`
	Status         string    `json:"status"`
	EmojiType      string    `gorm:"index" json:"emoji_type"`
	BaseUnicode    string    `json:"base_unicode"`
	SkinTone       string    `gorm:"index" json:"skin_tone"`
	HairStyle      string    `json:"hair_style"`
	HasVariations  bool      `json:"has_variations"`
	CopyCount      int64     `gorm:"default:0" json:"copy_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Emoji) TableName() string {
	return "emojis"
}

// Qualification levels from the Unicode emoji-data source.
const (
	StatusFullyQualified     = "fully-qualified"
	StatusMinimallyQualified = "minimally-qualified"
	StatusComponent          = "component"
)

// Emoji type tags derived from the codepoint pattern at ingestion.
const (
	TypeStandard        = "standard"
	TypeSkinToneVariant = "skin-tone-variant"
	TypeFlag            = "flag"
	TypeZWJSequence     = "zwj-sequence"
	TypeMultiCodepoint  = "multi-codepoint"
)
