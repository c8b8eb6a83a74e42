package httpx

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/grocerly/checkout/internal/catalog"
)

type CatalogHandler struct {
	DB   *pgxpool.Pool
	Repo catalog.Repo
}

func (h *CatalogHandler) Register(r *chi.Mux) {
	r.Get("/products", h.list)
}

func (h *CatalogHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Repo.List(ctx, h.DB)
	if err != nil {
		log.Printf("list products: %v", err)
		writeError(w, http.StatusInternalServerError, "could not load products")
		return
	}
	writeJSON(w, http.StatusOK, ps)
}
