package domain

// ActionKind values are the literal discriminants the model is instructed
// to emit.
type ActionKind string

const (
	ActionSearch     ActionKind = "buscar"
	ActionAddToCart  ActionKind = "agregar"
	ActionModifyCart ActionKind = "modificar"
)

// Action is a validated instruction derived from the model's proposal.
// Exactly the payload fields of the variant named by Kind are populated;
// values are only constructed by the parser, so the dispatcher never sees
// a half-filled variant.
type Action struct {
	Kind   ActionKind
	Query  string       // ActionSearch
	Items  []CartChange // ActionAddToCart, ActionModifyCart
	CartID int64        // ActionModifyCart
}
