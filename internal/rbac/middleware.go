package rbac

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

var defaultChecker = NewChecker(nil)

// guard admits a request when allow accepts its role; name is logged on denial.
func guard(name string, allow func(role string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			if !allow(role) {
				log.Ctx(r.Context()).Debug().Str("role", role).Str("need", name).Str("path", r.URL.Path).Msg("forbidden")
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func Require(perm string) func(http.Handler) http.Handler {
	return guard(perm, func(role string) bool {
		return role != "" && defaultChecker.Has(role, perm)
	})
}

func RequireAny(perms ...string) func(http.Handler) http.Handler {
	return guard("any of "+strings.Join(perms, ","), func(role string) bool {
		return role != "" && defaultChecker.Any(role, perms...)
	})
}
