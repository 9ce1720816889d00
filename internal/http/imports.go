package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/QuoteSync/quotesync/internal/database"
	"github.com/QuoteSync/quotesync/internal/docstore"
	"github.com/QuoteSync/quotesync/internal/entities"
	"github.com/QuoteSync/quotesync/internal/importer"
	"github.com/QuoteSync/quotesync/internal/tasks"
)

// ImportController handles document uploads and the import history.
type ImportController struct {
	db            *database.Database
	importer      *importer.Importer
	store         *docstore.Store
	taskClient    *tasks.Client
	autotag       bool
	maxUploadSize int64
}

func NewImportController(db *database.Database, imp *importer.Importer, store *docstore.Store, taskClient *tasks.Client, autotag bool, maxUploadSizeMB int64) *ImportController {
	if maxUploadSizeMB <= 0 {
		maxUploadSizeMB = 25
	}
	return &ImportController{
		db:            db,
		importer:      imp,
		store:         store,
		taskClient:    taskClient,
		autotag:       autotag,
		maxUploadSize: maxUploadSizeMB * 1024 * 1024,
	}
}

// formFile fetches the uploaded file, enforcing extension and size limits.
func (ic *ImportController) formFile(c *gin.Context, wantExt string) (multipart.File, *multipart.FileHeader, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondBadRequest(c, "file not provided")
		return nil, nil, false
	}

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != wantExt {
		file.Close()
		respondBadRequest(c, fmt.Sprintf("only %s files are accepted", wantExt))
		return nil, nil, false
	}

	if header.Size == 0 {
		file.Close()
		respondBadRequest(c, "file is empty")
		return nil, nil, false
	}

	if header.Size > ic.maxUploadSize {
		file.Close()
		respondBadRequest(c, fmt.Sprintf("file too large (max %d MB)", ic.maxUploadSize/(1024*1024)))
		return nil, nil, false
	}

	return file, header, true
}

// UploadQuotes imports a delimited plaintext highlights file.
func (ic *ImportController) UploadQuotes(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	file, header, ok := ic.formFile(c, ".txt")
	if !ok {
		return
	}
	defer file.Close()

	reader := io.LimitReader(file, ic.maxUploadSize+1)
	summary, err := ic.importer.ImportClippings(user.ID, reader, header.Filename)
	if err != nil {
		if errors.Is(err, importer.ErrInvalidInput) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "upload-quotes")
		return
	}

	ic.enqueueAutotag(summary.QuoteIDs)

	c.JSON(http.StatusOK, gin.H{
		"quotes_added":       summary.QuotesAdded,
		"duplicates_skipped": summary.Duplicates,
		"import_log_id":      summary.Log.ID,
	})
}

// UploadDocx imports a single annotation export. The source document and
// its parsed JSON are kept in the document store.
func (ic *ImportController) UploadDocx(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	file, header, ok := ic.formFile(c, ".docx")
	if !ok {
		return
	}
	defer file.Close()

	path, err := ic.store.SaveUpload(io.LimitReader(file, ic.maxUploadSize+1), header.Filename)
	if err != nil {
		respondInternalError(c, err, "upload-docx: storing file")
		return
	}

	doc := &entities.Document{OwnerID: user.ID, FilePath: path, Title: header.Filename}
	if err := ic.db.CreateDocument(doc); err != nil {
		respondInternalError(c, err, "upload-docx: recording document")
		return
	}

	summary, err := ic.importer.ImportDocx(user.ID, path, header.Filename)
	if err != nil {
		if errors.Is(err, importer.ErrInvalidInput) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "upload-docx")
		return
	}

	if _, err := ic.store.SaveJSON(path, summary.Book); err != nil {
		log.Printf("Failed to store parsed JSON for %s: %v", header.Filename, err)
	}
	if err := ic.db.MarkDocumentProcessed(doc.ID); err != nil {
		log.Printf("Failed to mark document %d processed: %v", doc.ID, err)
	}

	ic.enqueueAutotag(summary.QuoteIDs)

	c.JSON(http.StatusOK, gin.H{
		"book":               summary.Book.Title,
		"author":             summary.Book.Author,
		"quotes_added":       summary.QuotesAdded,
		"duplicates_skipped": summary.Duplicates,
		"import_log_id":      summary.Log.ID,
		"data":               summary.Book,
	})
}

// UploadZip imports a batch of annotation exports from one archive.
func (ic *ImportController) UploadZip(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	file, header, ok := ic.formFile(c, ".zip")
	if !ok {
		return
	}
	defer file.Close()

	path, err := ic.store.SaveUpload(io.LimitReader(file, ic.maxUploadSize+1), header.Filename)
	if err != nil {
		respondInternalError(c, err, "upload-zip: storing file")
		return
	}

	summary, err := ic.importer.ImportZip(user.ID, path, header.Filename)
	if err != nil {
		if errors.Is(err, importer.ErrInvalidInput) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "upload-zip")
		return
	}

	ic.enqueueAutotag(summary.QuoteIDs)

	errs := summary.Errors
	if errs == nil {
		errs = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"total_docx_files":   summary.TotalFiles,
		"processed_files":    summary.ProcessedFiles,
		"quotes_added":       summary.QuotesAdded,
		"duplicates_skipped": summary.Duplicates,
		"import_log_id":      summary.Log.ID,
		"books":              summary.Books,
		"errors":             errs,
	})
}

// ImportLogResponse is the explicit shape of one import history entry.
type ImportLogResponse struct {
	ID                uint     `json:"id"`
	Platform          string   `json:"platform"`
	Status            string   `json:"status"`
	QuotesAdded       int      `json:"quotes_added"`
	DuplicatesSkipped int      `json:"duplicates_skipped"`
	FileName          string   `json:"file_name,omitempty"`
	Errors            []string `json:"errors,omitempty"`
	CreatedAt         string   `json:"created_at"`
}

// ImportHistory lists the owner's import logs, newest first.
func (ic *ImportController) ImportHistory(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	logs, err := ic.db.GetImportLogsForUser(user.ID)
	if err != nil {
		respondInternalError(c, err, "import-history")
		return
	}

	history := make([]ImportLogResponse, 0, len(logs))
	for _, entry := range logs {
		history = append(history, shapeImportLog(entry))
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}

func shapeImportLog(entry entities.ImportLog) ImportLogResponse {
	resp := ImportLogResponse{
		ID:                entry.ID,
		Platform:          string(entry.Platform),
		Status:            string(entry.Status),
		QuotesAdded:       entry.QuotesAdded,
		DuplicatesSkipped: entry.DuplicatesSkipped,
		FileName:          entry.FileName,
		CreatedAt:         entry.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if entry.Errors != "" {
		// Stored as a JSON array of per-file error strings.
		_ = json.Unmarshal([]byte(entry.Errors), &resp.Errors)
	}
	return resp
}

// enqueueAutotag schedules tag generation for freshly imported quotes when
// the model-backed tagger is active. Enqueue failures only log; the import
// itself already succeeded.
func (ic *ImportController) enqueueAutotag(quoteIDs []uint) {
	if !ic.autotag || ic.taskClient == nil {
		return
	}
	for _, id := range quoteIDs {
		if _, err := ic.taskClient.Add(tasks.AutotagQuoteTask{QuoteID: id}).Save(); err != nil {
			log.Printf("Failed to enqueue autotag for quote %d: %v", id, err)
		}
	}
}
