package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/nvidela/shop-assistant/internal/core/domain"
	"github.com/nvidela/shop-assistant/internal/core/port"
)

// GET /products?q=substring (200, array of products; q absent -> all)
// GET /products/{id} (200 product, 404 {error})

type ProductsHandler struct {
	catalog port.ProductsProvider
}

func RegisterProducts(mux *http.ServeMux, catalog port.ProductsProvider) {
	h := ProductsHandler{catalog}
	mux.HandleFunc("GET /products", h.SearchProducts)
	mux.HandleFunc("GET /products/{id}", h.ProductByID)
}

func (h ProductsHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.SearchProducts"
	log := slog.With("op", op)

	ps, err := h.catalog.SearchProducts(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error interno del servidor")
		log.Error("failed to search products", "err", err)
		return
	}

	out := make([]Product, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProductJSON(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h ProductsHandler) ProductByID(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.ProductByID"
	log := slog.With("op", op)

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Producto no encontrado")
		return
	}

	p, err := h.catalog.ProductByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "Producto no encontrado")
			return
		}
		writeError(w, http.StatusInternalServerError, "Error interno del servidor")
		log.Error("failed to read product", "err", err)
		return
	}
	writeJSON(w, http.StatusOK, toProductJSON(p))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response body", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
