package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nvidela/shop-assistant/internal/core/service"
)

func TestBuildActionPrompt(t *testing.T) {
	msg := "quiero dos remeras negras"
	prompt := service.BuildActionPrompt(msg)

	assert.Contains(t, prompt, "Usuario: "+msg)
	assert.Contains(t, prompt, `"action": "buscar" | "agregar" | "modificar"`)
	assert.True(t, len(prompt) > len(msg))
}

func TestBuildPlainPrompt(t *testing.T) {
	msg := "¿qué me recomendás para el invierno?"
	prompt := service.BuildPlainPrompt(msg)

	assert.Contains(t, prompt, "Usuario: "+msg)
	assert.Contains(t, prompt, "SOLO en texto natural")
	assert.NotContains(t, prompt, `"action"`)
}
