package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"projecthub/backend/models"
	"projecthub/backend/services"
)

type MembershipHandler struct {
	Service *services.MembershipService
}

func NewMembershipHandler(service *services.MembershipService) *MembershipHandler {
	return &MembershipHandler{Service: service}
}

type addMemberRequest struct {
	UserID string             `json:"userId"`
	Role   models.ProjectRole `json:"role"`
}

func (h *MembershipHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseObjectID(r, "projectId")
	if err != nil {
		writeError(w, err)
		return
	}

	var req addMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", models.ErrValidation))
		return
	}
	userID, err := parseHexID(req.UserID, "userId")
	if err != nil {
		writeError(w, err)
		return
	}

	membership, err := h.Service.AddMember(r.Context(), projectID, userID, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, membership)
}

func (h *MembershipHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseObjectID(r, "projectId")
	if err != nil {
		writeError(w, err)
		return
	}
	userID, err := parseObjectID(r, "userId")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.Service.RemoveMember(r.Context(), projectID, userID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "member removed"})
}

type changeRoleRequest struct {
	Role models.ProjectRole `json:"role"`
}

func (h *MembershipHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseObjectID(r, "projectId")
	if err != nil {
		writeError(w, err)
		return
	}
	userID, err := parseObjectID(r, "userId")
	if err != nil {
		writeError(w, err)
		return
	}

	var req changeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", models.ErrValidation))
		return
	}

	if err := h.Service.ChangeRole(r.Context(), projectID, userID, req.Role); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "role updated"})
}

func (h *MembershipHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseObjectID(r, "projectId")
	if err != nil {
		writeError(w, err)
		return
	}

	members, err := h.Service.ListMembers(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}
