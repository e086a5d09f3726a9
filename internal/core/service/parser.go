package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nvidela/shop-assistant/internal/core/domain"
)

// ParseAction turns raw model text into a validated domain.Action.
// It is total: any input yields either an Action or a *domain.ParseError,
// never a panic. Markdown code fences and surrounding prose around the
// JSON object are tolerated.
func ParseAction(raw string) (domain.Action, error) {
	dec := json.NewDecoder(strings.NewReader(extractJSON(raw)))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return domain.Action{}, &domain.ParseError{Kind: domain.ParseMalformed, Err: err}
	}

	kind, ok := doc["action"].(string)
	if !ok {
		return domain.Action{}, &domain.ParseError{Kind: domain.ParseUnknownAction, Field: "action"}
	}

	params, _ := doc["params"].(map[string]any)

	switch domain.ActionKind(kind) {
	case domain.ActionSearch:
		return parseSearch(params)
	case domain.ActionAddToCart:
		return parseAddToCart(params)
	case domain.ActionModifyCart:
		return parseModifyCart(params)
	default:
		return domain.Action{}, &domain.ParseError{Kind: domain.ParseUnknownAction, Field: kind}
	}
}

func parseSearch(params map[string]any) (domain.Action, error) {
	q, ok := params["q"].(string)
	if !ok {
		return domain.Action{}, missingParam("q")
	}
	if strings.TrimSpace(q) == "" {
		return domain.Action{}, emptyParam("q")
	}
	return domain.Action{Kind: domain.ActionSearch, Query: q}, nil
}

func parseAddToCart(params map[string]any) (domain.Action, error) {
	items, err := parseItems(params)
	if err != nil {
		return domain.Action{}, err
	}
	return domain.Action{Kind: domain.ActionAddToCart, Items: items}, nil
}

func parseModifyCart(params map[string]any) (domain.Action, error) {
	cartID, err := intParam(params, "cart_id")
	if err != nil {
		return domain.Action{}, err
	}
	items, err := parseItems(params)
	if err != nil {
		return domain.Action{}, err
	}
	return domain.Action{Kind: domain.ActionModifyCart, CartID: cartID, Items: items}, nil
}

func parseItems(params map[string]any) ([]domain.CartChange, error) {
	rawItems, ok := params["items"].([]any)
	if !ok {
		return nil, missingParam("items")
	}
	if len(rawItems) == 0 {
		return nil, emptyParam("items")
	}

	changes := make([]domain.CartChange, 0, len(rawItems))
	for i, ri := range rawItems {
		item, ok := ri.(map[string]any)
		if !ok {
			return nil, missingParam(fmt.Sprintf("items[%d]", i))
		}
		productID, err := intParam(item, "product_id")
		if err != nil {
			return nil, missingParam(fmt.Sprintf("items[%d].product_id", i))
		}
		qty, err := intParam(item, "qty")
		if err != nil || qty < 0 {
			return nil, missingParam(fmt.Sprintf("items[%d].qty", i))
		}
		changes = append(changes, domain.CartChange{ProductID: productID, Qty: int(qty)})
	}
	return changes, nil
}

func intParam(m map[string]any, key string) (int64, error) {
	num, ok := m[key].(json.Number)
	if !ok {
		return 0, missingParam(key)
	}
	n, err := num.Int64()
	if err != nil {
		return 0, missingParam(key)
	}
	return n, nil
}

func missingParam(field string) *domain.ParseError {
	return &domain.ParseError{Kind: domain.ParseMissingParams, Field: field}
}

func emptyParam(field string) *domain.ParseError {
	return &domain.ParseError{Kind: domain.ParseEmptyParams, Field: field}
}

// extractJSON strips markdown fences and trailing prose, keeping the first
// balanced JSON object when one is present.
func extractJSON(content string) string {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimLeft(trimmed, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
		trimmed = strings.TrimSpace(trimmed)
	}
	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSuffix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	}
	if obj, ok := firstJSONObject(trimmed); ok {
		return obj
	}
	return trimmed
}

func firstJSONObject(text string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escape := false
	for i, r := range text {
		if start == -1 {
			if r == '{' {
				start = i
				depth = 1
			}
			continue
		}
		if inString {
			switch {
			case escape:
				escape = false
			case r == '\\':
				escape = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
