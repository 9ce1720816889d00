package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/QuoteSync/quotesync/internal/tagger"
)

// TagsController exposes on-demand tag generation.
type TagsController struct {
	tagger tagger.Tagger
}

func NewTagsController(tg tagger.Tagger) *TagsController {
	return &TagsController{tagger: tg}
}

type generateTagsRequest struct {
	Text     string `json:"text" binding:"required"`
	Language string `json:"language"`
	NumTags  int    `json:"num_tags"`
}

// Generate runs the active tagging strategy over the supplied text.
func (tc *TagsController) Generate(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	var req generateTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "text is required")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondBadRequest(c, "text is required")
		return
	}

	tags, err := tc.tagger.GenerateTags(c.Request.Context(), req.Text, req.Language, req.NumTags)
	if err != nil {
		respondInternalError(c, err, "generate-tags")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tags":     tags,
		"strategy": tc.tagger.Name(),
	})
}
