package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/QuoteSync/quotesync/internal/database"
	"github.com/QuoteSync/quotesync/internal/entities"
)

// CorpusController serves reads over the quote corpus. Every endpoint
// shapes its response explicitly; entities never leak wholesale.
type CorpusController struct {
	db *database.Database
}

func NewCorpusController(db *database.Database) *CorpusController {
	return &CorpusController{db: db}
}

type QuoteResponse struct {
	ID             uint         `json:"id"`
	Title          string       `json:"title"`
	Body           string       `json:"body"`
	Chapter        string       `json:"chapter,omitempty"`
	Location       string       `json:"location,omitempty"`
	SourcePlatform string       `json:"source_platform,omitempty"`
	BookURL        string       `json:"book_url,omitempty"`
	IsFavorite     bool         `json:"is_favorite"`
	Tags           []string     `json:"tags"`
	Book           *BookSummary `json:"book,omitempty"`
	CreatedAt      string       `json:"created_at"`
}

type BookSummary struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

type BookResponse struct {
	ID        uint           `json:"id"`
	Title     string         `json:"title"`
	Publisher string         `json:"publisher,omitempty"`
	Cover     *string        `json:"cover,omitempty"`
	Author    *AuthorSummary `json:"author,omitempty"`
}

type AuthorSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type AuthorResponse struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Cover *string `json:"cover,omitempty"`
	Bio   *string `json:"bio,omitempty"`
}

type TagResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ListQuotes returns the owner's quotes, newest first, paginated.
func (cc *CorpusController) ListQuotes(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	limit, offset := parsePagination(c)
	quotes, total, err := cc.db.GetQuotesForUser(user.ID, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list-quotes")
		return
	}

	shaped := make([]QuoteResponse, 0, len(quotes))
	for _, quote := range quotes {
		shaped = append(shaped, shapeQuote(quote))
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    shaped,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(shaped)) < total,
	})
}

func shapeQuote(quote entities.Quote) QuoteResponse {
	resp := QuoteResponse{
		ID:             quote.ID,
		Title:          quote.Title,
		Body:           quote.Body,
		Chapter:        quote.Chapter,
		Location:       quote.Location,
		SourcePlatform: string(quote.SourcePlatform),
		BookURL:        quote.BookURL,
		IsFavorite:     quote.IsFavorite,
		Tags:           make([]string, 0, len(quote.Tags)),
		CreatedAt:      quote.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	for _, tag := range quote.Tags {
		resp.Tags = append(resp.Tags, tag.Title)
	}
	if quote.Book != nil {
		resp.Book = &BookSummary{ID: quote.Book.ID, Title: quote.Book.Title}
	}
	return resp
}

// ListBooks returns all books with their authors.
func (cc *CorpusController) ListBooks(c *gin.Context) {
	books, err := cc.db.GetAllBooks()
	if err != nil {
		respondInternalError(c, err, "list-books")
		return
	}

	shaped := make([]BookResponse, 0, len(books))
	for _, book := range books {
		resp := BookResponse{
			ID:        book.ID,
			Title:     book.Title,
			Publisher: book.Publisher,
			Cover:     book.Cover,
		}
		if book.Author != nil {
			resp.Author = &AuthorSummary{ID: book.Author.ID, Name: book.Author.Name}
		}
		shaped = append(shaped, resp)
	}

	c.JSON(http.StatusOK, gin.H{"books": shaped})
}

func (cc *CorpusController) ListAuthors(c *gin.Context) {
	authors, err := cc.db.GetAllAuthors()
	if err != nil {
		respondInternalError(c, err, "list-authors")
		return
	}

	shaped := make([]AuthorResponse, 0, len(authors))
	for _, author := range authors {
		shaped = append(shaped, AuthorResponse{
			ID:    author.ID,
			Name:  author.Name,
			Cover: author.Cover,
			Bio:   author.Bio,
		})
	}

	c.JSON(http.StatusOK, gin.H{"authors": shaped})
}

func (cc *CorpusController) ListTags(c *gin.Context) {
	tags, err := cc.db.GetAllTags()
	if err != nil {
		respondInternalError(c, err, "list-tags")
		return
	}

	shaped := make([]TagResponse, 0, len(tags))
	for _, tag := range tags {
		shaped = append(shaped, TagResponse{ID: tag.ID, Title: tag.Title, Description: tag.Description})
	}

	c.JSON(http.StatusOK, gin.H{"tags": shaped})
}

// Stats reports corpus totals for the owner's library view.
func (cc *CorpusController) Stats(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	quotes, books, err := cc.db.GetStatsForUser(user.ID)
	if err != nil {
		respondInternalError(c, err, "stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{"total_quotes": quotes, "total_books": books})
}

// ToggleFavorite flips the favorite flag on one of the owner's quotes.
func (cc *CorpusController) ToggleFavorite(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	quote, err := cc.db.GetQuoteByID(id)
	if err != nil || quote.OwnerID != user.ID {
		respondNotFound(c, "quote")
		return
	}

	favorite := !quote.IsFavorite
	if err := cc.db.SetQuoteFavorite(id, user.ID, favorite); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "quote")
			return
		}
		respondInternalError(c, err, "toggle-favorite")
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "is_favorite": favorite})
}
