package resume

import (
	"context"
	"errors"

	apperrors "github.com/newsdesk/resume-service/internal/core/errors"
)

const defaultUserMessage = "Error al generar el resumen"

var userMessages = []struct {
	err error
	msg string
}{
	{apperrors.ErrInvalidRequest, "Solicitud inválida"},
	{apperrors.ErrUnauthenticated, "No autorizado: no hay una sesión activa"},
	{apperrors.ErrOrganizationNotFound, "No se encontró la organización del usuario"},
	{apperrors.ErrConfigNotFound, "No se encontró la configuración de la herramienta"},
	{apperrors.ErrMissingPrompts, "Faltan los prompts requeridos (Principal y Selección)"},
	{apperrors.ErrAPIKeyNotFound, "No se encontró la clave de API del proveedor seleccionado"},
	{apperrors.ErrAPIKeyEmpty, "La clave de API del proveedor seleccionado está vacía"},
	{apperrors.ErrUnsupportedProvider, "Proveedor de IA no soportado"},
	{apperrors.ErrSelectionFailed, "Error al seleccionar las noticias más importantes"},
	{context.DeadlineExceeded, "Tiempo de espera agotado al generar el resumen"},
}

// UserMessage maps an error to the Spanish message shown to the user.
func UserMessage(err error) string {
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}

	return defaultUserMessage
}
