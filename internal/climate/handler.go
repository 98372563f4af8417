// AngelaMos | 2026
// handler.go

package climate

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/angelamos/climate-api/internal/core"
)

// Handler serves the read-only climate datasets behind authentication.
// Editing the datasets is a separate administrative concern and not
// exposed here.
type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/datasets", func(r chi.Router) {
		r.Use(authenticator)
		r.Get("/sea-level-rise", h.ListSeaLevelRise)
		r.Get("/temperature-anomaly", h.ListTemperatureAnomaly)
		r.Get("/co2-concentration", h.ListCO2Concentration)
	})
}

func (h *Handler) ListSeaLevelRise(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	rows, err := h.repo.ListSeaLevelRise(r.Context(), limit, offset)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, rows)
}

func (h *Handler) ListTemperatureAnomaly(
	w http.ResponseWriter,
	r *http.Request,
) {
	limit, offset := pagination(r)

	rows, err := h.repo.ListTemperatureAnomaly(r.Context(), limit, offset)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, rows)
}

func (h *Handler) ListCO2Concentration(
	w http.ResponseWriter,
	r *http.Request,
) {
	limit, offset := pagination(r)

	rows, err := h.repo.ListCO2Concentration(r.Context(), limit, offset)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, rows)
}

func pagination(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
