package http

import (
	"errors"
	"fmt"
	"strings"

	"coachpay/internal/core"

	"github.com/shopspring/decimal"
)

// User facing messages.
const (
	msgSaved          = "Registro guardado con exito. ¡Gracias!"
	msgMissingName    = "Por favor, completa tu nombre y apellidos."
	msgMissingDays    = "Debes introducir al menos una categoria con dias entrenados."
	msgNoRecords      = "Aún no hay registros guardados."
	msgNoMonthRecords = "No hay registros para ese mes."
	msgNoMonths       = "No hay meses disponibles para calcular pagos."
	msgBadMonth       = "Selecciona un mes válido."
	msgCleared        = "Todos los registros han sido eliminados."
	msgWrongPhrase    = "Contrasena incorrecta."
	msgForbidden      = "Acceso restringido."
	msgRateLimited    = "Demasiadas solicitudes. Inténtalo de nuevo en un minuto."
	msgBadRequest     = "Formato de solicitud no válido."
	msgSaveError      = "Error al guardar el registro."
	msgReadError      = "Error al leer los registros."
	msgClearError     = "Error al eliminar los registros."
)

// formatEuros renders an amount the way the club writes it: "1.234,50 €".
func formatEuros(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	var grouped strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}
	out := grouped.String() + "," + frac + " €"
	if neg {
		return "-" + out
	}
	return out
}

// validationMessage turns a rejected submission into the warning shown on
// the form.
func validationMessage(err error) string {
	var ve *core.ValidationError
	if !errors.As(err, &ve) {
		return msgBadRequest
	}
	prefix := ""
	if ve.Block > 0 {
		prefix = fmt.Sprintf("Categoría #%d: ", ve.Block)
	}
	switch ve.Field {
	case "first_name", "last_name":
		return msgMissingName
	case "blocks":
		return msgMissingDays
	case "units":
		return prefix + "debes introducir al menos un día entrenado."
	case "category":
		return prefix + "categoría desconocida."
	case "role":
		return prefix + "rol desconocido."
	case "month":
		return prefix + "mes no válido."
	case "games":
		return prefix + "los partidos deben ser un número entero no negativo."
	case "days":
		return prefix + "hay días que no existen en ese mes."
	default:
		return prefix + ve.Msg
	}
}
