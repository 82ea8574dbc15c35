package handlers

import (
	"net/http"

	"stemquest/internal/assets"
	"stemquest/internal/repository"
)

// AssetsHandler serves the offline lesson map and the lesson files
type AssetsHandler struct {
	lessons     *assets.OfflineLessons
	catalogRepo *repository.CatalogRepository
}

// NewAssetsHandler creates a new assets handler
func NewAssetsHandler(lessons *assets.OfflineLessons, catalogRepo *repository.CatalogRepository) *AssetsHandler {
	return &AssetsHandler{
		lessons:     lessons,
		catalogRepo: catalogRepo,
	}
}

// AssetMap returns the full topic-to-filename map
func (h *AssetsHandler) AssetMap(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"topics": h.lessons.All()})
}

// TopicLesson resolves a topic to its lesson filename, generating a
// placeholder page when no curated one exists
func (h *AssetsHandler) TopicLesson(w http.ResponseWriter, r *http.Request) {
	topicID := r.PathValue("topic")

	topic, err := h.catalogRepo.GetTopic(topicID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to load topic", err)
		return
	}
	if topic == nil {
		respondWithError(w, http.StatusNotFound, "Topic not found", "", nil)
		return
	}

	filename, err := h.lessons.Filename(topic.ID, topic.Name)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to resolve lesson", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"topic":    topic.ID,
		"filename": filename,
		"url":      "/offline/" + filename,
	})
}

// Download serves a lesson file from the asset directory
func (h *AssetsHandler) Download(w http.ResponseWriter, r *http.Request) {
	path, err := h.lessons.Path(r.PathValue("filename"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid filename", "", nil)
		return
	}
	http.ServeFile(w, r, path)
}
