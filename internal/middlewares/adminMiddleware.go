package middlewares

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/Infinite-Loop-Club/club-site-api/internal/utils"
)

// AdminOnly guards administrative routes with a static bearer credential,
// checked against a bcrypt hash so the raw token never lives in config.
func AdminOnly(adminTokenHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminTokenHash == "" {
				log.Error().Msg("ADMIN_TOKEN_HASH is not set; rejecting admin request")
				utils.SendJSONError(w, "You are not allowed to perform this operation", http.StatusUnauthorized)
				return
			}

			authorization := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(authorization, "Bearer ")
			if !found || token == "" {
				utils.SendJSONError(w, "You are not allowed to perform this operation", http.StatusUnauthorized)
				return
			}

			if err := bcrypt.CompareHashAndPassword([]byte(adminTokenHash), []byte(token)); err != nil {
				log.Warn().Str("path", r.URL.Path).Msg("Rejected admin request with bad credential")
				utils.SendJSONError(w, "You are not allowed to perform this operation", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
