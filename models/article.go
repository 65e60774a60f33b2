package models

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/finnews/finnews/textnorm"
)

// Article is a news article shown in the feed.
type Article struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Description  string    `gorm:"type:text;not null" json:"description"`
	Category     string    `gorm:"size:64;index" json:"category"`
	Date         string    `gorm:"size:64" json:"date"`
	Image        string    `gorm:"size:1024" json:"image"`
	Author       string    `gorm:"size:128" json:"author"`
	AuthorKey    string    `gorm:"size:128;index" json:"-"`
	ReadTime     string    `gorm:"size:64" json:"readTime"`
	Claps        int64     `gorm:"not null;default:0;index" json:"claps"`
	CommentCount int64     `gorm:"not null;default:0" json:"commentCount"`
	Tags         Tags      `gorm:"type:text" json:"tags"`
	SearchText   string    `gorm:"type:text" json:"-"`
	CreatedAt    time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Comments     []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// searchFieldSep joins the normalized fields. Normalized text holds only letters, digits and
// single spaces, so a token can never match across two fields.
const searchFieldSep = "|"

// BuildSearchText returns the value stored in SearchText for the article's current fields.
func (a *Article) BuildSearchText() string {
	return strings.Join([]string{
		textnorm.Normalize(a.Title),
		textnorm.Normalize(a.Description),
		textnorm.Normalize(a.Author),
		textnorm.Normalize(a.Category),
	}, searchFieldSep)
}

// BeforeSave keeps tags normalized and the derived search columns in sync with the text fields.
func (a *Article) BeforeSave(tx *gorm.DB) error {
	a.Tags = Tags(textnorm.NormalizeTags(a.Tags))
	a.AuthorKey = textnorm.Fold(a.Author)
	a.SearchText = a.BuildSearchText()
	return nil
}
