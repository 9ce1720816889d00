package database

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/QuoteSync/quotesync/internal/entities"
)

// Platform tags are seeded up front so every import can attach its source
// tag without racing on first use.
var defaultTags = []entities.Tag{
	{Title: "kindle", Description: "Imported from Amazon Kindle"},
	{Title: "google_books", Description: "Imported from Google Play Books"},
}

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Author{},
		&entities.Book{},
		&entities.Tag{},
		&entities.Quote{},
		&entities.Document{},
		&entities.ImportLog{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db}

	if err := database.seedTags(); err != nil {
		return nil, fmt.Errorf("failed to seed tags: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return database, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) seedTags() error {
	for _, tag := range defaultTags {
		var existing entities.Tag
		result := d.DB.Where("title = ?", tag.Title).First(&existing)
		if result.Error == gorm.ErrRecordNotFound {
			if err := d.DB.Create(&tag).Error; err != nil {
				return fmt.Errorf("failed to create tag %s: %w", tag.Title, err)
			}
		}
	}
	return nil
}

// --- Users ---

func (d *Database) CreateUser(username, email, passwordHash string) (*entities.User, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	user := &entities.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Token:        token,
	}

	if err := d.DB.Create(user).Error; err != nil {
		return nil, err
	}

	return user, nil
}

func (d *Database) GetUserByToken(token string) (*entities.User, error) {
	var user entities.User
	err := d.DB.Where("token = ?", token).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) GetUserByUsername(username string) (*entities.User, error) {
	var user entities.User
	err := d.DB.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := d.DB.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// --- Reference data (shared, natural-keyed) ---

// GetOrCreateAuthor resolves an author by name, creating it on first
// reference. New authors get no cover image. A lost create race against a
// concurrent import resolves to the winner's row via the unique index.
func (d *Database) GetOrCreateAuthor(name string) (*entities.Author, error) {
	var author entities.Author
	err := d.DB.Where(entities.Author{Name: name}).FirstOrCreate(&author).Error
	if err != nil {
		var winner entities.Author
		if rerr := d.DB.Where("name = ?", name).First(&winner).Error; rerr == nil {
			return &winner, nil
		}
		return nil, err
	}
	return &author, nil
}

// GetOrCreateBook resolves a book by title. The author link and publisher
// are set only when the book is created; an existing book is returned as-is.
func (d *Database) GetOrCreateBook(title string, authorID *uint, publisher string) (*entities.Book, error) {
	var book entities.Book
	err := d.DB.Where(entities.Book{Title: title}).
		Attrs(entities.Book{AuthorID: authorID, Publisher: publisher}).
		FirstOrCreate(&book).Error
	if err != nil {
		var winner entities.Book
		if rerr := d.DB.Where("title = ?", title).First(&winner).Error; rerr == nil {
			return &winner, nil
		}
		return nil, err
	}
	return &book, nil
}

func (d *Database) GetOrCreateTag(title string) (*entities.Tag, error) {
	var tag entities.Tag
	err := d.DB.Where(entities.Tag{Title: title}).FirstOrCreate(&tag).Error
	if err != nil {
		var winner entities.Tag
		if rerr := d.DB.Where("title = ?", title).First(&winner).Error; rerr == nil {
			return &winner, nil
		}
		return nil, err
	}
	return &tag, nil
}

func (d *Database) GetAllAuthors() ([]entities.Author, error) {
	var authors []entities.Author
	err := d.DB.Order("name ASC").Find(&authors).Error
	return authors, err
}

func (d *Database) GetAllBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := d.DB.Preload("Author").Order("title ASC").Find(&books).Error
	return books, err
}

func (d *Database) GetAllTags() ([]entities.Tag, error) {
	var tags []entities.Tag
	err := d.DB.Order("title ASC").Find(&tags).Error
	return tags, err
}

func (d *Database) GetBookByTitle(title string) (*entities.Book, error) {
	var book entities.Book
	err := d.DB.Preload("Author").Where("title = ?", title).First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// --- Quotes ---

// CreateQuote persists exactly one quote row. It never merges with an
// existing quote, even when the body (and therefore the fingerprint)
// matches an earlier import.
func (d *Database) CreateQuote(quote *entities.Quote) error {
	return d.DB.Create(quote).Error
}

func (d *Database) GetQuoteByID(id uint) (*entities.Quote, error) {
	var quote entities.Quote
	err := d.DB.Preload("Tags").Preload("Book").Preload("Book.Author").First(&quote, id).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (d *Database) GetQuotesForUser(userID uint, limit, offset int) ([]entities.Quote, int64, error) {
	var total int64
	if err := d.DB.Model(&entities.Quote{}).Where("owner_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := d.DB.Preload("Tags").Preload("Book").Where("owner_id = ?", userID).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var quotes []entities.Quote
	err := query.Find(&quotes).Error
	return quotes, total, err
}

// CountQuotesByHash reports how many of the owner's quotes share a body
// fingerprint. Used to count duplicates for the import summary; duplicates
// are never rejected at write time.
func (d *Database) CountQuotesByHash(userID uint, hash string) (int64, error) {
	var count int64
	err := d.DB.Model(&entities.Quote{}).Where("owner_id = ? AND hash = ?", userID, hash).Count(&count).Error
	return count, err
}

func (d *Database) SetQuoteFavorite(id, userID uint, favorite bool) error {
	result := d.DB.Model(&entities.Quote{}).
		Where("id = ? AND owner_id = ?", id, userID).
		Update("is_favorite", favorite)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (d *Database) AddTagToQuote(quoteID uint, tag *entities.Tag) error {
	var quote entities.Quote
	if err := d.DB.First(&quote, quoteID).Error; err != nil {
		return err
	}
	return d.DB.Model(&quote).Association("Tags").Append(tag)
}

// --- Documents ---

func (d *Database) CreateDocument(doc *entities.Document) error {
	return d.DB.Create(doc).Error
}

func (d *Database) MarkDocumentProcessed(id uint) error {
	return d.DB.Model(&entities.Document{}).Where("id = ?", id).Update("processed", true).Error
}

// --- Import logs ---

func (d *Database) CreateImportLog(logEntry *entities.ImportLog) error {
	return d.DB.Create(logEntry).Error
}

func (d *Database) UpdateImportLog(logEntry *entities.ImportLog) error {
	return d.DB.Save(logEntry).Error
}

func (d *Database) GetImportLogsForUser(userID uint) ([]entities.ImportLog, error) {
	var logs []entities.ImportLog
	err := d.DB.Where("owner_id = ?", userID).Order("created_at DESC, id DESC").Find(&logs).Error
	return logs, err
}

// DeleteOldImportLogs removes logs older than the retention window.
func (d *Database) DeleteOldImportLogs(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	result := d.DB.Where("created_at < ?", cutoff).Delete(&entities.ImportLog{})
	return result.RowsAffected, result.Error
}

func (d *Database) GetStatsForUser(userID uint) (totalQuotes int64, totalBooks int64, err error) {
	err = d.DB.Model(&entities.Quote{}).Where("owner_id = ?", userID).Count(&totalQuotes).Error
	if err != nil {
		return
	}
	err = d.DB.Model(&entities.Book{}).Count(&totalBooks).Error
	return
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
