package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"projecthub/backend/models"
	"projecthub/backend/services"

	"github.com/gorilla/mux"
)

type NotificationHandler struct {
	Service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: service}
}

func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	notifications, err := h.Service.GetNotificationsByUserID(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, notifications)
}

type markReadRequest struct {
	UserID         string    `json:"userId"`
	NotificationID string    `json:"notificationId"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	var req markReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", models.ErrValidation))
		return
	}

	if err := h.Service.MarkNotificationAsRead(req.UserID, req.NotificationID, req.CreatedAt); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "notification marked as read"})
}
