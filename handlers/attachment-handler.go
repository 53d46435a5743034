package handlers

import (
	"fmt"
	"io"
	"net/http"

	"projecthub/backend/logging"
	"projecthub/backend/models"
	"projecthub/backend/storage"
)

// Uploads are buffered to disk above this size rather than held in memory.
const maxUploadMemory = 32 << 20

type AttachmentHandler struct {
	Storage *storage.AttachmentStorage
}

func NewAttachmentHandler(s *storage.AttachmentStorage) *AttachmentHandler {
	return &AttachmentHandler{Storage: s}
}

func (h *AttachmentHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseObjectID(r, "projectId")
	if err != nil {
		writeError(w, err)
		return
	}

	infos, err := h.Storage.List(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

// Upload accepts a multipart form with a single "file" field and responds
// with the ok/error envelope instead of a bare error body.
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseObjectID(r, "projectId")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.writeUploadResult(w, nil, fmt.Errorf("%w: invalid multipart form", models.ErrValidation))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeUploadResult(w, nil, fmt.Errorf("%w: file field is required", models.ErrValidation))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	attachment, err := h.Storage.Upload(r.Context(), projectID, header.Filename, contentType, header.Size, file)
	h.writeUploadResult(w, attachment, err)
}

func (h *AttachmentHandler) writeUploadResult(w http.ResponseWriter, attachment *models.Attachment, err error) {
	if err != nil {
		writeJSON(w, statusForError(err), models.AttachmentResponse{
			Status: err.Error(),
			Error:  true,
		})
		return
	}
	writeJSON(w, http.StatusCreated, models.AttachmentResponse{
		Status: "uploaded",
		Error:  false,
		Attachment: &models.UploadedAttachment{
			URL:  h.Storage.ObjectURL(attachment.StorageKey),
			Name: attachment.FileName,
		},
	})
}

func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	attachmentID, err := parseObjectID(r, "attachmentId")
	if err != nil {
		writeError(w, err)
		return
	}

	content, attachment, err := h.Storage.Download(r.Context(), attachmentID)
	if err != nil {
		writeError(w, err)
		return
	}
	defer content.Close()

	w.Header().Set("Content-Type", attachment.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment.FileName))
	if _, err := io.Copy(w, content); err != nil {
		// Headers are already out, so the failure can only be logged.
		logging.Logger.Errorf("Streaming attachment %s failed: %v", attachment.ID.Hex(), err)
	}
}

func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	attachmentID, err := parseObjectID(r, "attachmentId")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.Storage.Delete(r.Context(), attachmentID); err != nil {
		writeJSON(w, statusForError(err), models.AttachmentResponse{
			Status: err.Error(),
			Error:  true,
		})
		return
	}
	writeJSON(w, http.StatusOK, models.AttachmentResponse{Status: "deleted", Error: false})
}
