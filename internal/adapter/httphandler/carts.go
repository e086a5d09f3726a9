package httphandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/nvidela/shop-assistant/internal/core/domain"
	"github.com/nvidela/shop-assistant/internal/core/port"
)

// POST /carts {items: [{product_id, qty}]} (201 cart, 400 {error}, 404 {error})
// PATCH /carts/{id} {items: [{product_id, qty}]} (200 cart, 400, 404)

const msgItemsRequired = "Se requiere un array de items"

type CartsHandler struct {
	creator  port.CartCreator
	modifier port.CartModifier
}

func RegisterCarts(
	mux *http.ServeMux, creator port.CartCreator, modifier port.CartModifier,
) {
	h := CartsHandler{creator, modifier}
	mux.HandleFunc("POST /carts", h.CreateCart)
	mux.HandleFunc("PATCH /carts/{id}", h.ModifyCart)
}

func (h CartsHandler) CreateCart(w http.ResponseWriter, r *http.Request) {
	const op = "CartsHandler.CreateCart"
	log := slog.With("op", op)

	body, ok := decodeCartBody(w, r)
	if !ok {
		return
	}

	cart, err := h.creator.CreateCart(r.Context(), toChanges(body.Items))
	if err != nil {
		h.writeCartError(w, log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCartJSON(cart))
}

func (h CartsHandler) ModifyCart(w http.ResponseWriter, r *http.Request) {
	const op = "CartsHandler.ModifyCart"
	log := slog.With("op", op)

	cartID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Carrito no encontrado")
		return
	}

	body, ok := decodeCartBody(w, r)
	if !ok {
		return
	}

	cart, err := h.modifier.ModifyCart(r.Context(), cartID, toChanges(body.Items))
	if err != nil {
		h.writeCartError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartJSON(cart))
}

func decodeCartBody(w http.ResponseWriter, r *http.Request) (CartBody, bool) {
	var body CartBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, msgItemsRequired)
		return CartBody{}, false
	}
	if len(body.Items) == 0 {
		writeError(w, http.StatusBadRequest, msgItemsRequired)
		return CartBody{}, false
	}
	return body, true
}

func (h CartsHandler) writeCartError(
	w http.ResponseWriter, log *slog.Logger, err error,
) {
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		switch nf.Resource {
		case "product":
			writeError(w, http.StatusNotFound,
				fmt.Sprintf("Producto con ID %d no encontrado", nf.ID))
		default:
			writeError(w, http.StatusNotFound, "Carrito no encontrado")
		}
		return
	}

	var ve domain.ValidationError
	if errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, ve.Msg)
		return
	}

	writeError(w, http.StatusInternalServerError, "Error interno del servidor")
	log.Error("cart operation failed", "err", err)
}
