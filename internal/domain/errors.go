package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// Los siguientes son conflictos: errors.Is(err, ErrConflict) es true.
	ErrDuplicate    = fmt.Errorf("%w: recurso duplicado", ErrConflict)
	ErrHasChildren  = fmt.Errorf("%w: el lote tiene lotes derivados", ErrConflict)
	ErrStaleVersion = fmt.Errorf("%w: la versión del lote cambió desde la lectura", ErrConflict)

	// ErrLineageCorrupted indica un ciclo o repetición en el grafo padre/hijo.
	// No puede ocurrir por la API; solo por datos alterados fuera de ella.
	ErrLineageCorrupted = errors.New("linaje de lotes inconsistente")

	// ErrDigestMismatch el linaje de un manifiesto no coincide con su digest.
	ErrDigestMismatch = fmt.Errorf("%w: el digest del manifiesto no coincide", ErrInvalidInput)
)

// Invalid construye un error de validación con detalle; errors.Is(err, ErrInvalidInput) es true.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
