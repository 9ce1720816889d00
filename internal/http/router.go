package http

import (
	"github.com/gin-gonic/gin"

	"github.com/QuoteSync/quotesync/internal/auth"
	"github.com/QuoteSync/quotesync/internal/database"
	"github.com/QuoteSync/quotesync/internal/docstore"
	"github.com/QuoteSync/quotesync/internal/importer"
	"github.com/QuoteSync/quotesync/internal/tagger"
	"github.com/QuoteSync/quotesync/internal/tasks"
)

// RouterConfig carries every dependency the router needs. Optional pieces
// (task queue) may be nil.
type RouterConfig struct {
	DB          *database.Database
	AuthService *auth.Service
	Importer    *importer.Importer
	Store       *docstore.Store
	Tagger      tagger.Tagger
	TaskClient  *tasks.Client

	// Autotag enqueues tag generation for every imported quote. Enabled
	// when the model-backed tagger is active and the queue is running.
	Autotag         bool
	MaxUploadSizeMB int64
}

// NewRouter wires all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.DB)
	router.GET("/health", health.Health)

	users := NewUsersController(cfg.AuthService)
	router.POST("/auth/register", users.Register)
	router.POST("/auth/login", users.Login)

	imports := NewImportController(cfg.DB, cfg.Importer, cfg.Store, cfg.TaskClient, cfg.Autotag, cfg.MaxUploadSizeMB)
	corpus := NewCorpusController(cfg.DB)
	tagsCtl := NewTagsController(cfg.Tagger)
	assistantCtl := NewAssistantController()

	api := router.Group("/api", auth.Middleware(cfg.AuthService))
	{
		api.POST("/upload-quotes", imports.UploadQuotes)
		api.POST("/upload-docx", imports.UploadDocx)
		api.POST("/upload-zip", imports.UploadZip)
		api.GET("/import-history", imports.ImportHistory)

		api.GET("/quotes", corpus.ListQuotes)
		api.GET("/books", corpus.ListBooks)
		api.GET("/authors", corpus.ListAuthors)
		api.GET("/tags", corpus.ListTags)
		api.POST("/quotes/:id/favorite", corpus.ToggleFavorite)
		api.GET("/stats", corpus.Stats)

		api.POST("/tags/generate", tagsCtl.Generate)
		api.POST("/assistant/related", assistantCtl.Related)
	}

	return router
}
