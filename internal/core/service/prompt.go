package service

// Two prompt templates exist: the action template demands a raw JSON
// proposal the parser can decode, the plain template demands natural
// language for the passthrough chat mode. Both embed the user message
// verbatim.

const actionSystemPrompt = `Eres un asistente de ventas que puede hacer peticiones HTTP a una API REST para:
- buscar productos (/products?q=),
- ver detalles de un producto (/products/:id),
- agregar productos al carrito (POST /carts),
- modificar productos del carrito (PATCH /carts/:id).

Tu tarea es:
1. Analizar el mensaje del usuario.
2. Proponer una acción clara en formato JSON:
{
  "action": "buscar" | "agregar" | "modificar",
  "params": { "q": string } | { "items": [{"product_id": int, "qty": int}] } | { "cart_id": int, "items": [{"product_id": int, "qty": int}] }
}
No expliques nada. Solo devolvé el JSON.`

const plainSystemPrompt = `Eres un asistente de ventas que puede hacer peticiones HTTP a una API REST.
Responde SOLO en texto natural, nunca en formato JSON.

API disponible:
- GET /products?q=
- POST /carts
- PATCH /carts/:id`

func BuildActionPrompt(userMessage string) string {
	return actionSystemPrompt + "\n\nUsuario: " + userMessage + "\nAsistente: "
}

func BuildPlainPrompt(userMessage string) string {
	return plainSystemPrompt + "\n\nUsuario: " + userMessage + "\nAsistente: "
}
