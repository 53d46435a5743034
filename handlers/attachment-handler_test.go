package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"projecthub/backend/models"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Both rejection paths must answer with the upload envelope before any
// storage access, so a nil gateway is enough to exercise them.

func uploadRequest(t *testing.T, body *bytes.Buffer, contentType string) *http.Request {
	t.Helper()
	projectID := primitive.NewObjectID().Hex()
	req := httptest.NewRequest(http.MethodPost, "/projects/"+projectID+"/attachments", body)
	req.Header.Set("Content-Type", contentType)
	return mux.SetURLVars(req, map[string]string{"projectId": projectID})
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) models.AttachmentResponse {
	t.Helper()
	var resp models.AttachmentResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("response is not the upload envelope: %v", err)
	}
	return resp
}

func TestUploadRejectsInvalidMultipartForm(t *testing.T) {
	h := NewAttachmentHandler(nil)

	body := bytes.NewBufferString("this is not a multipart body")
	rr := httptest.NewRecorder()
	h.Upload(rr, uploadRequest(t, body, "multipart/form-data; boundary=missing"))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	resp := decodeEnvelope(t, rr)
	if !resp.Error {
		t.Error("envelope should flag the error")
	}
	if !strings.Contains(resp.Status, "invalid multipart form") {
		t.Errorf("status %q should name the malformed form", resp.Status)
	}
}

func TestUploadRejectsMissingFileField(t *testing.T) {
	h := NewAttachmentHandler(nil)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if err := mw.WriteField("note", "form without a file part"); err != nil {
		t.Fatalf("building form: %v", err)
	}
	mw.Close()

	rr := httptest.NewRecorder()
	h.Upload(rr, uploadRequest(t, body, mw.FormDataContentType()))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	resp := decodeEnvelope(t, rr)
	if !resp.Error {
		t.Error("envelope should flag the error")
	}
	if resp.Attachment != nil {
		t.Error("rejected upload must not carry an attachment")
	}
}
