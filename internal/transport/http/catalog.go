package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Kalind02/food-ordering-api/internal/domain"
)

// CatalogReader is the minimal interface needed for restaurant and menu
// listings.
type CatalogReader interface {
	ListRestaurants(ctx context.Context) ([]domain.Restaurant, error)
	ListMenu(ctx context.Context, restaurantID string) ([]domain.FoodItem, error)
}

// HandleListRestaurants returns an HTTP handler for the restaurant catalog.
func HandleListRestaurants(svc CatalogReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		restaurants, err := svc.ListRestaurants(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		out := make([]restaurantResponse, 0, len(restaurants))
		for _, rest := range restaurants {
			out = append(out, restaurantResponse{
				ID:      rest.ID,
				Name:    rest.Name,
				Cuisine: rest.Cuisine,
				Image:   rest.Image,
				Rating:  rest.Rating,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// HandleListMenu returns an HTTP handler for one restaurant's menu.
func HandleListMenu(svc CatalogReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		restaurantID := chi.URLParam(r, "id")

		items, err := svc.ListMenu(r.Context(), restaurantID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrRestaurantNotFound):
				writeError(w, http.StatusNotFound, codeRestaurantNotFound, err.Error())
			case errors.Is(err, domain.ErrInvalidID):
				writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		out := make([]foodItemResponse, 0, len(items))
		for _, item := range items {
			out = append(out, foodItemResponse{
				ID:          item.ID,
				Name:        item.Name,
				Price:       item.Price,
				Image:       item.Image,
				Description: item.Description,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type restaurantResponse struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Cuisine string  `json:"cuisine,omitempty"`
	Image   string  `json:"image,omitempty"`
	Rating  float64 `json:"rating,omitempty"`
}

type foodItemResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Image       string  `json:"image,omitempty"`
	Description string  `json:"description,omitempty"`
}
