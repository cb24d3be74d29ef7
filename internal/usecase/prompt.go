package usecase

import (
	"fmt"
	"strings"

	"persuader/internal/domain"
)

const draftPromptTemplate = `Actúa como un redactor de ventas de primer nivel. Tu tono es empático y profesional, y tu intención es ayudar de verdad.

Vas a escribir el borrador de un correo electrónico dirigido a la empresa "%[1]s".

El correo busca abrir una conversación, no cerrar una venta. Usa el siguiente argumentario como idea central del mensaje y adáptalo para que suene natural en un correo breve (menos de 150 palabras).

ARGUMENTARIO:
---
%[2]s
---

ESTRUCTURA:
1. Un saludo cordial al equipo de "%[1]s".
2. Un párrafo corto que conecte con su posible necesidad o dolor a partir del argumentario.
3. Un segundo párrafo que presente la solución de forma clara y concisa.
4. Una llamada a la acción suave y de baja fricción, por ejemplo: "¿Tendrían 15 minutos la próxima semana para ver cómo aplicarlo a su negocio?".

Escribe solo el cuerpo del correo. No incluyas "Asunto:" ni despedidas como "Saludos cordiales".`

// BuildDraftPrompt renders the instruction sent to the text-completion service.
func BuildDraftPrompt(req domain.DraftRequest) string {
	return fmt.Sprintf(draftPromptTemplate,
		strings.TrimSpace(req.BusinessName),
		strings.TrimSpace(req.Pitch))
}
