package respond

import (
	"errors"
	"net/http"

	"github.com/quipulabs/centinela/internal/jwt"
	"github.com/quipulabs/centinela/internal/observability/logger"
	"github.com/quipulabs/centinela/internal/rbac"
	"github.com/quipulabs/centinela/internal/service"
	"github.com/quipulabs/centinela/internal/store/core"
)

// Error traduce un error de dominio al status y sobre correspondientes.
// Es el único punto donde los errores se vuelven HTTP: los handlers
// delegan acá en vez de mapear por su cuenta.
//
//	401 autenticación (credenciales o token inválidos)
//	403 autorización (rol o permiso faltante)
//	404 entidad inexistente        → icono warning
//	409 conflicto de unicidad      → icono warning
//	400 entrada inválida
//	500 todo lo demás, con log; el detalle nunca viaja al cliente
func Error(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidRefresh):
		Fail(w, http.StatusUnauthorized, IconError, err.Error())

	case errors.Is(err, rbac.ErrUnauthenticated),
		errors.Is(err, jwt.ErrInvalidToken),
		errors.Is(err, jwt.ErrWrongType):
		Fail(w, http.StatusUnauthorized, IconError, "No autenticado.")

	case errors.Is(err, rbac.ErrMissingRole),
		errors.Is(err, rbac.ErrMissingPermission):
		Fail(w, http.StatusForbidden, IconError, "No tiene permisos para este recurso.")

	case errors.Is(err, core.ErrNotFound):
		Fail(w, http.StatusNotFound, IconWarning, err.Error())

	case errors.Is(err, core.ErrConflict):
		Fail(w, http.StatusConflict, IconWarning, err.Error())

	case errors.Is(err, core.ErrInvalidInput):
		Fail(w, http.StatusBadRequest, IconError, err.Error())

	default:
		logger.From(r.Context()).Error("error no manejado", logger.Err(err))
		Fail(w, http.StatusInternalServerError, IconError, "Error interno del servidor.")
	}
}
