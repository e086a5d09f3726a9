package modelclient

import (
	"context"
	"errors"
	"net"

	"github.com/nvidela/shop-assistant/internal/core/domain"
)

// transportError distinguishes a blown deadline from other transport
// failures. Provider error bodies are handled by each client; nothing
// here ever carries credential material.
func transportError(err error) *domain.ModelError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.ModelError{Kind: domain.ModelTimeout, Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &domain.ModelError{Kind: domain.ModelTimeout, Err: err}
	}
	return &domain.ModelError{Kind: domain.ModelNetwork, Err: err}
}
