package entities

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"gorm.io/gorm"
)

// SourcePlatform identifies where imported quotes came from.
type SourcePlatform string

const (
	PlatformKindle           SourcePlatform = "kindle"
	PlatformGoogleBooks      SourcePlatform = "google_books"
	PlatformGoogleBooksBatch SourcePlatform = "google_books_batch"
)

type ImportStatus string

const (
	ImportStatusPending   ImportStatus = "pending"
	ImportStatusCompleted ImportStatus = "completed"
	ImportStatusFailed    ImportStatus = "failed"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;size:150" json:"username"`
	Email        string         `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string         `gorm:"size:128" json:"-"`
	Token        string         `gorm:"uniqueIndex;size:64" json:"-"` // API token, hidden from JSON
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// Author is shared, globally-scoped reference data: any user's import may
// create or reuse it. Resolved by name (natural key).
type Author struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:1024" json:"name"`
	Cover     *string   `gorm:"size:2048" json:"cover,omitempty"`
	Bio       *string   `gorm:"type:text" json:"bio,omitempty"`
	Books     []Book    `gorm:"foreignKey:AuthorID" json:"books,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Book is resolved by title (natural key). The author link is nullable so a
// book survives author deletion.
type Book struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"uniqueIndex;size:1024" json:"title"`
	AuthorID  *uint     `gorm:"index" json:"author_id,omitempty"`
	Author    *Author   `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"author,omitempty"`
	Publisher string    `gorm:"size:1024" json:"publisher,omitempty"`
	Cover     *string   `gorm:"size:2048" json:"cover,omitempty"`
	Quotes    []Quote   `gorm:"foreignKey:BookID" json:"quotes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tag titles are unique slugs. Source-platform tags (kindle, google_books)
// are applied automatically to every quote from that import.
type Tag struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"uniqueIndex;size:100" json:"title"`
	Description string    `gorm:"size:1024" json:"description,omitempty"`
	Quotes      []Quote   `gorm:"many2many:quote_tags;" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

type Quote struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	OwnerID uint   `gorm:"index" json:"owner_id"`
	Owner   User   `gorm:"foreignKey:OwnerID" json:"-"`
	Title   string `gorm:"size:1024" json:"title"`
	Body    string `gorm:"type:text" json:"body"`

	BookID *uint `gorm:"index" json:"book_id,omitempty"`
	Book   *Book `gorm:"foreignKey:BookID;constraint:OnDelete:SET NULL" json:"book,omitempty"`

	Location       string         `gorm:"size:256" json:"location,omitempty"` // page, position, etc.
	Chapter        string         `gorm:"size:1024" json:"chapter,omitempty"`
	SourcePlatform SourcePlatform `gorm:"size:50;index" json:"source_platform,omitempty"`
	BookURL        string         `gorm:"size:2048" json:"book_url,omitempty"`

	// Hash is a dedup fingerprint over the body, stored for future dedup
	// use but not enforced as a uniqueness constraint.
	Hash string `gorm:"index;size:64" json:"hash,omitempty"`

	Tags       []Tag `gorm:"many2many:quote_tags;" json:"tags,omitempty"`
	IsFavorite bool  `gorm:"default:false" json:"is_favorite"`
	Archived   bool  `gorm:"default:false" json:"archived"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeSave computes the dedup fingerprint from the body.
func (q *Quote) BeforeSave(tx *gorm.DB) error {
	q.Hash = Fingerprint(q.Body)
	return nil
}

// Fingerprint returns the deterministic dedup hash for a quote body.
func Fingerprint(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}

// Document records a persisted upload artifact. The source file (and, for
// DOCX uploads, the parsed JSON next to it) is deliberately left in place
// after processing for debugging and reference.
type Document struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OwnerID    uint      `gorm:"index" json:"owner_id"`
	FilePath   string    `gorm:"size:1024" json:"file_path"`
	Title      string    `gorm:"size:1024" json:"title,omitempty"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
	Processed  bool      `gorm:"default:false" json:"processed"`
}

// ImportLog is the audit record for one import invocation: one row per
// document, or one per batch for a ZIP.
type ImportLog struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	OwnerID           uint           `gorm:"index" json:"owner_id"`
	Platform          SourcePlatform `gorm:"size:50" json:"platform"`
	Status            ImportStatus   `gorm:"size:50;default:'pending'" json:"status"`
	QuotesAdded       int            `json:"quotes_added"`
	DuplicatesSkipped int            `json:"duplicates_skipped"`
	FileName          string         `gorm:"size:1024" json:"file_name,omitempty"`
	Errors            string         `gorm:"type:text" json:"errors,omitempty"` // JSON array of per-file errors
	CreatedAt         time.Time      `json:"created_at"`
}

// BeforeSave enforces the net-additions invariant: a run that produced only
// duplicates reports zero net additions.
func (l *ImportLog) BeforeSave(tx *gorm.DB) error {
	if l.DuplicatesSkipped > 0 && l.QuotesAdded == l.DuplicatesSkipped {
		l.QuotesAdded = 0
	}
	return nil
}

func (User) TableName() string      { return "users" }
func (Author) TableName() string    { return "authors" }
func (Book) TableName() string      { return "books" }
func (Tag) TableName() string       { return "tags" }
func (Quote) TableName() string     { return "quotes" }
func (Document) TableName() string  { return "documents" }
func (ImportLog) TableName() string { return "import_logs" }
