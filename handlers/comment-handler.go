package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"projecthub/backend/models"
	"projecthub/backend/services"
)

type CommentHandler struct {
	Service *services.CommentService
}

func NewCommentHandler(service *services.CommentService) *CommentHandler {
	return &CommentHandler{Service: service}
}

type addCommentRequest struct {
	AuthorID string `json:"authorId"`
	Text     string `json:"text"`
}

func (h *CommentHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseObjectID(r, "taskId")
	if err != nil {
		writeError(w, err)
		return
	}

	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", models.ErrValidation))
		return
	}
	authorID, err := parseHexID(req.AuthorID, "authorId")
	if err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.Service.AddComment(r.Context(), taskID, authorID, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseObjectID(r, "taskId")
	if err != nil {
		writeError(w, err)
		return
	}

	comments, err := h.Service.ListComments(r.Context(), taskID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}
