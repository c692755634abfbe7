// Файл: internal/api/middleware.go
package api

import (
	"context"
	"log"
	"net/http"
	"strings"

	"ArborCRM/internal/models"
)

// UserContextKey - ключ для сохранения данных пользователя в контексте запроса.
var UserContextKey = &contextKey{"User"}

type contextKey struct {
	name string
}

// AuthMiddleware проверяет Bearer-токен пользователя через кэш сессий
// (при промахе — через бэкенд) и кладет пользователя в контекст запроса.
func (deps *ApiDependencies) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if authHeader == "" || token == authHeader {
			writeJSONError(w, http.StatusUnauthorized, "Отсутствует токен авторизации.")
			return
		}

		user, err := deps.Sessions.ResolveUser(r.Context(), token)
		if err != nil {
			log.Printf("AuthMiddleware: токен не прошел проверку: %v", err)
			writeJSONError(w, http.StatusUnauthorized, "Недействительный токен.")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminMiddleware пускает дальше только super_admin. Ответ — 403 с тем
// же текстом, который показывает фронтовый резолвер при тихом даунгрейде.
func (deps *ApiDependencies) AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := r.Context().Value(UserContextKey).(*models.User)
		if !ok {
			writeJSONError(w, http.StatusForbidden, "Пользователь не найден в контексте запроса.")
			return
		}

		role, err := deps.parseRole(user)
		if err != nil || !role.IsAdmin() {
			writeJSONError(w, http.StatusForbidden, accessDeniedText())
			return
		}

		next.ServeHTTP(w, r)
	})
}

// currentUser достает пользователя из контекста запроса.
func currentUser(r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	return user, ok
}
