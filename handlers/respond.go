package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"projecthub/backend/logging"
	"projecthub/backend/models"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// parseObjectID pulls a path variable and parses it as an ObjectID.
func parseObjectID(r *http.Request, name string) (primitive.ObjectID, error) {
	return parseHexID(mux.Vars(r)[name], name)
}

func parseHexID(value, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid %s format", models.ErrValidation, name)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

// statusForError maps the service error taxonomy onto HTTP codes.
// Inconsistent and Storage are server-side conditions; everything else is
// the caller's problem.
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrInconsistent):
		return http.StatusInternalServerError
	case errors.Is(err, models.ErrStorage):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		logging.Logger.Errorf("Request failed: %v", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
