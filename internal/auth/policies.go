package auth

import (
	"fmt"
	"go-blog-app/internal/logger"

	"github.com/casbin/casbin/v2"
)

// SeedDefaultPolicies ensures that the application has a baseline set of
// authorization rules. It checks if each default policy exists before adding
// it, making the operation idempotent and safe to run on every startup.
func SeedDefaultPolicies(e casbin.IEnforcer, log logger.Logger) {
	log.Info("Seeding default authorization policies...")

	// Anonymous visitors get the public site plus registration, login and the
	// contact form. Authenticated users additionally get single-post and
	// category views. Admins get the dashboard and inbox. Each role inherits
	// the one below it.
	policies := [][]string{
		{"anonymous", "/", "GET"},
		{"anonymous", "/about", "GET"},
		{"anonymous", "/contact", "GET"},
		{"anonymous", "/contact", "POST"},
		{"anonymous", "/register", "GET"},
		{"anonymous", "/register", "POST"},
		{"anonymous", "/login", "GET"},
		{"anonymous", "/login", "POST"},
		{"anonymous", "/logout", "GET"},
		{"anonymous", "/auth/oidc/login", "GET"},
		{"anonymous", "/auth/oidc/callback", "GET"},
		{"anonymous", "/static/*", "GET"},
		{"anonymous", "/media/*", "GET"},
		{"anonymous", "/favicon.ico", "GET"},

		{"user", "/post/*", "GET"},
		{"user", "/category/*", "GET"},

		{"admin", "/admin/*", "GET"},
		{"admin", "/admin/*", "POST"},
	}
	for _, p := range policies {
		if has, _ := e.HasPolicy(p); !has {
			if _, err := e.AddPolicy(p); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add policy %v", p))
			}
		}
	}

	roles := [][2]string{
		{"user", "anonymous"},
		{"admin", "user"},
	}
	for _, r := range roles {
		if has, _ := e.HasRoleForUser(r[0], r[1]); !has {
			if _, err := e.AddRoleForUser(r[0], r[1]); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add role inheritance %s -> %s", r[0], r[1]))
			}
		}
	}
	log.Info("Policy seeding complete.")
}
