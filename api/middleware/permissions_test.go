package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/pdv-backend/pkg/auth"
	"github.com/angelmondragon/pdv-backend/pkg/enums"
)

func TestRequirePermission(t *testing.T) {
	cases := []struct {
		role   enums.OperatorRole
		module auth.Module
		action auth.Action
		want   int
	}{
		{enums.OperatorRoleCashier, auth.ModulePDV, auth.ActionCreate, http.StatusOK},
		{enums.OperatorRoleStockManager, auth.ModulePDV, auth.ActionCreate, http.StatusForbidden},
		{enums.OperatorRoleCashier, auth.ModuleInventory, auth.ActionCreate, http.StatusForbidden},
		{enums.OperatorRoleManager, auth.ModuleInventory, auth.ActionCreate, http.StatusOK},
		{"", auth.ModulePDV, auth.ActionView, http.StatusForbidden},
	}

	for _, tc := range cases {
		handler := RequirePermission(tc.module, tc.action, nil)(okHandler())
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithOperator(req.Context(), "op-1", string(tc.role)))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != tc.want {
			t.Fatalf("%s %s:%s: expected %d got %d", tc.role, tc.module, tc.action, tc.want, resp.Code)
		}
	}
}
