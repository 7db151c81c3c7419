package apihandlers

import (
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"mailsort/internal/app"
	"mailsort/internal/models"
)

type APIHandler struct {
	App *app.App
}

func NewAPIHandler(a *app.App) *APIHandler {
	return &APIHandler{App: a}
}

type classifyRequest struct {
	From    string `json:"from"`
	Subject string `json:"subject"`
	Snippet string `json:"snippet"`
}

func (r classifyRequest) message() models.Message {
	return models.Message{Sender: r.From, Subject: r.Subject, Snippet: r.Snippet}
}

// respondClassifyError maps classification failures onto HTTP statuses. A
// failure is never converted into a default category; the caller always sees
// an explicit error.
func respondClassifyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrModelUnavailable):
		Unavailable(c, "embedding model unavailable: "+err.Error())
	case errors.Is(err, models.ErrEncoding):
		Unprocessable(c, "input could not be embedded: "+err.Error())
	default:
		Internal(c, fmt.Sprintf("classification failed: %v", err))
	}
}

// ClassifyHandler classifies one message.
func (h *APIHandler) ClassifyHandler(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.App.Labeler.Classify(c.Request.Context(), req.message())
	if err != nil {
		respondClassifyError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// BatchClassifyHandler classifies a JSON array of messages in one shot and
// returns index-aligned results.
func (h *APIHandler) BatchClassifyHandler(c *gin.Context) {
	var reqs []classifyRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	msgs := make([]models.Message, len(reqs))
	for i, r := range reqs {
		msgs[i] = r.message()
	}

	batchID := uuid.NewString()
	results, err := h.App.Labeler.ClassifyBatch(c.Request.Context(), msgs)
	if err != nil {
		log.Warnf("Batch %s failed for %d messages: %v", batchID, len(msgs), err)
		respondClassifyError(c, err)
		return
	}
	log.Debugf("Batch %s classified %d messages", batchID, len(results))

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"batch_id": batchID, "results": results}})
}

// CategoriesHandler lists the configured categories and their descriptions.
func (h *APIHandler) CategoriesHandler(c *gin.Context) {
	type categoryView struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	var out []categoryView
	if h.App.Classifier != nil {
		for _, cat := range h.App.Classifier.Categories() {
			out = append(out, categoryView{Name: cat.Name, Description: cat.Description})
		}
	} else {
		names := make([]string, 0, len(h.App.Config.Categories))
		for name := range h.App.Config.Categories {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			out = append(out, categoryView{Name: name, Description: h.App.Config.Categories[name]})
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": out})
}
