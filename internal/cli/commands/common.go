package commands

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gros-dev/gros/internal/cli/auth"
	"github.com/gros-dev/gros/internal/cli/client"
	"github.com/gros-dev/gros/internal/cli/guard"
	"github.com/gros-dev/gros/internal/cli/session"
	"github.com/gros-dev/gros/internal/cli/userconfig"
)

// printNavigator renders "navigation" as a hint about where the web app
// would have sent the user.
type printNavigator struct{}

func (printNavigator) Navigate(route string) {
	fmt.Printf("→ %s\n", route)
}

// env bundles the pieces every page command needs: the persisted session,
// the session service, the route guard, and the API client.
type env struct {
	store   session.Store
	service *auth.Service
	guard   *guard.Guard
	api     *client.Client
	tokens  auth.TokenStore
}

func newEnv() (*env, error) {
	serverURL, err := userconfig.GetServerURL()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve server: %w", err)
	}

	path, err := session.DefaultPath()
	if err != nil {
		return nil, err
	}
	store, err := session.NewFileStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	api := client.New(serverURL, store)
	nav := printNavigator{}
	log := zerolog.Nop()

	service := auth.NewService(store, api, nav, log)
	g := guard.New(service, store, nav, log)

	return &env{store: store, service: service, guard: g, api: api, tokens: auth.DefaultTokens}, nil
}

// requireRoute runs the guard for the given route and converts a denial
// into an error so the command exits non-zero. The guard itself never
// errors; it redirects and returns false.
func (e *env) requireRoute(route guard.Route) error {
	if !e.guard.CanActivate(route) {
		return fmt.Errorf("access denied for %s", route.Path)
	}
	return nil
}
