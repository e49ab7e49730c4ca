package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/henriquesergio1/it-asset-360-sub000/internal/auth"
)

type contextKey string

const ContextKeyOperator contextKey = "operator"

// Auth valida o JWT de acesso e injeta o operador no contexto. O nome do
// operador assina as entradas do histórico.
func Auth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				writeError(w, http.StatusUnauthorized, "AUTH", "token ausente")
				return
			}

			claims, err := jwtManager.ParseAndValidate(strings.TrimSpace(token))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "token inválido")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithOperator(r.Context(), claims.Name)))
		})
	}
}

// WithOperator grava o operador autenticado no contexto.
func WithOperator(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ContextKeyOperator, name)
}

// GetOperator recupera o operador do contexto.
func GetOperator(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeyOperator).(string)
	return val
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
