package httpserver

import (
	"encoding/json"
	"net/http"

	"hyperlens/internal/service"
)

type broadcastCreateRequest struct {
	Message        string `json:"message" validate:"required,max=500"`
	Category       string `json:"category" validate:"omitempty,oneof=Offer Community"`
	ExpiresInHours int    `json:"expiresInHours"`
}

func handleCreateBroadcast(bcSvc *service.BroadcastService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req broadcastCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeErrorMessage(w, http.StatusBadRequest, err.Error())
			return
		}

		broadcast, err := bcSvc.Create(r.Context(), CurrentUser(r).ID, service.BroadcastCreateInput{
			Message:        req.Message,
			Category:       req.Category,
			ExpiresInHours: req.ExpiresInHours,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeSuccess(w, http.StatusCreated, "broadcast created successfully", map[string]any{
			"broadcast": broadcast,
		})
	}
}

func handleNearbyBroadcasts(bcSvc *service.BroadcastService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lat, lng, ok := parseLatLng(w, r)
		if !ok {
			return
		}
		broadcasts, err := bcSvc.NearbyActive(r.Context(), lat, lng)
		if err != nil {
			writeError(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "", map[string]any{
			"count":      len(broadcasts),
			"broadcasts": broadcasts,
		})
	}
}

func handleMyBroadcasts(bcSvc *service.BroadcastService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		broadcasts, err := bcSvc.Mine(r.Context(), CurrentUser(r).ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "", map[string]any{
			"count":      len(broadcasts),
			"broadcasts": broadcasts,
		})
	}
}
