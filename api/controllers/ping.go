package controllers

import (
	"net/http"

	"github.com/angelmondragon/pdv-backend/api/middleware"
	"github.com/angelmondragon/pdv-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

// OperatorPing echoes the identity carried by the bearer token.
func OperatorPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{
			"scope":       "operator",
			"status":      "ok",
			"operator_id": middleware.OperatorIDFromContext(r.Context()),
			"role":        middleware.RoleFromContext(r.Context()),
		})
	}
}
