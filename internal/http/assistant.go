package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/QuoteSync/quotesync/internal/assistant"
)

// defaultSimilarityThreshold drops candidates that are barely related.
const defaultSimilarityThreshold = 0.25

// AssistantController ranks related quotes by embedding similarity. The
// caller supplies all embeddings; nothing is indexed server-side.
type AssistantController struct{}

func NewAssistantController() *AssistantController {
	return &AssistantController{}
}

type relatedRequest struct {
	Embedding  []float64            `json:"embedding" binding:"required"`
	Candidates map[string][]float64 `json:"candidates" binding:"required"`
	Threshold  *float64             `json:"threshold"`
}

// Related returns candidate ids ordered by cosine similarity to the
// reference embedding.
func (ac *AssistantController) Related(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	var req relatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "embedding and candidates are required")
		return
	}
	if len(req.Embedding) == 0 {
		respondBadRequest(c, "embedding must not be empty")
		return
	}

	threshold := defaultSimilarityThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	matches := assistant.RankRelated(req.Embedding, req.Candidates, threshold)
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}
