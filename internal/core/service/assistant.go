package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nvidela/shop-assistant/internal/core/domain"
	"github.com/nvidela/shop-assistant/internal/core/port"
)

var _ port.AssistantChat = (*AssistantService)(nil)

const (
	replyNotUnderstood = "No pude entender el pedido."
	replyNoMatches     = "No encontré productos que coincidan con tu búsqueda."
)

// AssistantService runs the interpret-and-dispatch pipeline: user message
// to prompt, prompt to model, raw text to Action, Action to catalog and
// cart calls. One model attempt per message; resilience, if ever needed,
// belongs to a wrapper, not here.
type AssistantService struct {
	model       port.TextGenerator
	catalog     port.ProductsProvider
	creator     port.CartCreator
	modifier    port.CartModifier
	events      port.EventsPublisher // nil disables analytics
	temperature float32
	timeout     time.Duration
}

func NewAssistantService(
	model port.TextGenerator,
	catalog port.ProductsProvider,
	creator port.CartCreator,
	modifier port.CartModifier,
	events port.EventsPublisher,
	temperature float32,
	timeout time.Duration,
) AssistantService {
	return AssistantService{
		model, catalog, creator, modifier, events, temperature, timeout,
	}
}

func (s AssistantService) Reply(
	ctx context.Context, message string,
) (string, error) {
	const op = "AssistantService.Reply"
	log := slog.With("op", op)

	raw, err := s.generate(ctx, BuildActionPrompt(message))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	action, err := ParseAction(raw)
	if err != nil {
		var pe *domain.ParseError
		if errors.As(err, &pe) {
			log.Warn("model proposal rejected",
				"kind", string(pe.Kind), "field", pe.Field)
			return replyNotUnderstood, nil
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	reply, err := s.dispatch(ctx, action)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return reply, nil
}

func (s AssistantService) PlainReply(
	ctx context.Context, message string,
) (string, error) {
	const op = "AssistantService.PlainReply"

	raw, err := s.generate(ctx, BuildPlainPrompt(message))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return strings.TrimSpace(raw), nil
}

func (s AssistantService) generate(
	ctx context.Context, prompt string,
) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.model.Generate(ctx, prompt, s.temperature)
}

// dispatch maps a validated Action to collaborator calls. Not-found and
// validation failures become descriptive replies; anything else is an
// internal failure for the caller to log and mask.
func (s AssistantService) dispatch(
	ctx context.Context, action domain.Action,
) (string, error) {
	const op = "AssistantService.dispatch"

	switch action.Kind {
	case domain.ActionSearch:
		return s.dispatchSearch(ctx, action)
	case domain.ActionAddToCart:
		return s.dispatchAddToCart(ctx, action)
	case domain.ActionModifyCart:
		return s.dispatchModifyCart(ctx, action)
	default:
		return "", fmt.Errorf("%s: unhandled action kind %q", op, action.Kind)
	}
}

func (s AssistantService) dispatchSearch(
	ctx context.Context, action domain.Action,
) (string, error) {
	const op = "AssistantService.dispatchSearch"

	ps, err := s.catalog.SearchProducts(ctx, action.Query)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.publishSearch(ctx, action.Query, len(ps))

	if len(ps) == 0 {
		return replyNoMatches, nil
	}

	var b strings.Builder
	b.WriteString("Encontré estos productos:")
	for i, p := range ps {
		fmt.Fprintf(&b, "\n  %d. %s - $%s", i+1, p.Name, formatPrice(p.Price))
	}
	return b.String(), nil
}

func (s AssistantService) dispatchAddToCart(
	ctx context.Context, action domain.Action,
) (string, error) {
	const op = "AssistantService.dispatchAddToCart"

	cart, err := s.creator.CreateCart(ctx, action.Items)
	if err != nil {
		if reply, ok := userFacing(err); ok {
			return reply, nil
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Carrito %d creado con los siguientes ítems:", cart.ID)
	writeItems(&b, cart.Items)
	return b.String(), nil
}

func (s AssistantService) dispatchModifyCart(
	ctx context.Context, action domain.Action,
) (string, error) {
	const op = "AssistantService.dispatchModifyCart"

	cart, err := s.modifier.ModifyCart(ctx, action.CartID, action.Items)
	if err != nil {
		if reply, ok := userFacing(err); ok {
			return reply, nil
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Carrito %d actualizado:", cart.ID)
	if len(cart.Items) == 0 {
		b.WriteString(" sin ítems.")
	} else {
		writeItems(&b, cart.Items)
	}
	return b.String(), nil
}

func (s AssistantService) publishSearch(ctx context.Context, query string, n int) {
	const op = "AssistantService.publishSearch"

	if s.events == nil {
		return
	}
	e := domain.AssistantEvent{
		ID:     uuid.NewString(),
		Kind:   domain.EventSearch,
		Query:  query,
		NItems: n,
		At:     time.Now().UTC(),
	}
	if err := s.events.PublishEvent(ctx, e); err != nil {
		slog.Warn("failed to publish search event", "op", op, "err", err)
	}
}

// userFacing converts validation and not-found failures into replies the
// pipeline can return directly.
func userFacing(err error) (string, bool) {
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		switch nf.Resource {
		case "product":
			return fmt.Sprintf("Producto con ID %d no encontrado.", nf.ID), true
		case "cart":
			return fmt.Sprintf("Carrito %d no encontrado.", nf.ID), true
		}
	}
	var ve domain.ValidationError
	if errors.As(err, &ve) {
		return "No puedo hacer eso: " + ve.Msg, true
	}
	return "", false
}

func writeItems(b *strings.Builder, items []domain.CartItem) {
	for _, it := range items {
		fmt.Fprintf(b, "\n  - producto %d x %d", it.ProductID, it.Qty)
	}
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
