package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/pdv-backend/api/middleware"
	"github.com/angelmondragon/pdv-backend/api/responses"
	"github.com/angelmondragon/pdv-backend/internal/sales"
	pkgAuth "github.com/angelmondragon/pdv-backend/pkg/auth"
	"github.com/angelmondragon/pdv-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pdv-backend/pkg/errors"
	"github.com/angelmondragon/pdv-backend/pkg/logger"
)

type SaleReader interface {
	Detail(ctx context.Context, saleNumber int64) (sales.Detail, error)
}

// SaleDetail returns a committed sale. Operators without pdv:edit only see
// their own sales.
func SaleDetail(reader SaleReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reader == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sale store unavailable"))
			return
		}
		number, err := strconv.ParseInt(chi.URLParam(r, "saleNumber"), 10, 64)
		if err != nil || number <= 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "sale number must be a positive integer"))
			return
		}

		detail, err := reader.Detail(r.Context(), number)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, responses.FromDomain(err, ""))
			return
		}

		operatorID := middleware.OperatorIDFromContext(r.Context())
		role := enums.OperatorRole(middleware.RoleFromContext(r.Context()))
		if detail.OperatorID != operatorID && !pkgAuth.Allowed(role, pkgAuth.ModulePDV, pkgAuth.ActionEdit) {
			responses.WriteError(r.Context(), logg, w, responses.FromDomain(sales.ErrSaleNotFound, "sale not found"))
			return
		}
		responses.WriteSuccess(w, detail)
	}
}
