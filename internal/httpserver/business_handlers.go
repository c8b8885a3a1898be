package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"hyperlens/internal/service"
)

var validate = validator.New()

type businessRegisterRequest struct {
	ShopName string   `json:"shopName" validate:"required"`
	Category string   `json:"category" validate:"required,oneof=Event Kirana Medical Restaurant Hardware Salon Other"`
	Address  string   `json:"address" validate:"required"`
	Lat      *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lng      *float64 `json:"lng" validate:"required,min=-180,max=180"`
}

func handleRegisterBusiness(bizSvc *service.BusinessService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req businessRegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "all fields are required (shopName, category, address, lat, lng)")
			return
		}

		business, err := bizSvc.Register(r.Context(), CurrentUser(r).ID, service.BusinessRegisterInput{
			ShopName: req.ShopName,
			Category: req.Category,
			Address:  req.Address,
			Lat:      *req.Lat,
			Lng:      *req.Lng,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeSuccess(w, http.StatusCreated, "business registered successfully", map[string]any{
			"business": business,
		})
	}
}

func handleNearbyBusinesses(bizSvc *service.BusinessService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lat, lng, ok := parseLatLng(w, r)
		if !ok {
			return
		}
		businesses, err := bizSvc.Nearby(r.Context(), lat, lng)
		if err != nil {
			writeError(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "", map[string]any{
			"count":      len(businesses),
			"businesses": businesses,
		})
	}
}

func handleMyBusiness(bizSvc *service.BusinessService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		business, err := bizSvc.Mine(r.Context(), CurrentUser(r).ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "", map[string]any{"business": business})
	}
}

// parseLatLng reads required lat/lng query parameters. On failure it writes
// the 400 response and returns ok=false.
func parseLatLng(w http.ResponseWriter, r *http.Request) (lat, lng float64, ok bool) {
	latStr := r.URL.Query().Get("lat")
	lngStr := r.URL.Query().Get("lng")
	if latStr == "" || lngStr == "" {
		writeErrorMessage(w, http.StatusBadRequest, "latitude and longitude are required")
		return 0, 0, false
	}
	lat, errLat := strconv.ParseFloat(latStr, 64)
	lng, errLng := strconv.ParseFloat(lngStr, 64)
	if errLat != nil || errLng != nil {
		writeErrorMessage(w, http.StatusBadRequest, "latitude and longitude must be numbers")
		return 0, 0, false
	}
	return lat, lng, true
}
