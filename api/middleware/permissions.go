package middleware

import (
	"fmt"
	"net/http"

	"github.com/angelmondragon/pdv-backend/api/responses"
	pkgAuth "github.com/angelmondragon/pdv-backend/pkg/auth"
	"github.com/angelmondragon/pdv-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pdv-backend/pkg/errors"
	"github.com/angelmondragon/pdv-backend/pkg/logger"
)

// RequirePermission rejects operators whose role does not grant action on module.
func RequirePermission(module pkgAuth.Module, action pkgAuth.Action, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := enums.OperatorRole(RoleFromContext(r.Context()))
			if !pkgAuth.Allowed(role, module, action) {
				err := pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("%s:%s permission required", module, action))
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
