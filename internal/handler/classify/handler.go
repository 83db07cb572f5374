package classify

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/krishi-mitra/gateway/internal/backend"
	"github.com/krishi-mitra/gateway/pkg/utils"
)

const maxUploadBytes = 10 << 20

// Classifier forwards an image to the classification backend.
type Classifier interface {
	Classify(ctx context.Context, filename string, image io.Reader) (*backend.ClassifyResult, error)
}

// Handler proxies single-shot image classification requests. Unlike the
// conversational flow, failures here are surfaced to the user with the
// server-provided detail, since silent failure of an explicit action
// would be misleading.
type Handler struct {
	classifier Classifier
	log        *logrus.Entry
}

// New creates the classify handler.
func New(classifier Classifier) *Handler {
	return &Handler{
		classifier: classifier,
		log:        logrus.WithField("component", "classify"),
	}
}

// RegisterRoutes registers the classification route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/classify", h.handleClassify)
}

func (h *Handler) handleClassify(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	result, err := h.classifier.Classify(r.Context(), header.Filename, file)
	if err != nil {
		var classifyErr *backend.ClassifyError
		if errors.As(err, &classifyErr) && classifyErr.Detail != "" {
			utils.RespondError(w, http.StatusBadGateway, classifyErr.Detail)
			return
		}
		h.log.WithError(err).Warn("classification request failed")
		utils.RespondError(w, http.StatusBadGateway, "classification failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}
