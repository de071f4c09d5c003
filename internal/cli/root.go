// Package cli is the terminal front end of the storefront. Every command
// navigates the view layer the same way a browser session would.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/api"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/credstore"
	"github.com/fjod/go_cart/storefront/internal/guard"
	"github.com/fjod/go_cart/storefront/internal/pkg/logger"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/fjod/go_cart/storefront/internal/view"
)

var errNotLoggedIn = errors.New("not logged in, run \"storefront login\" first")

// flag name -> config key
var boundFlags = map[string]string{
	"api-url":    "api_url",
	"timeout":    "request_timeout",
	"log-level":  "log_level",
	"store":      "credentials.backend",
	"store-path": "credentials.path",
	"redis-addr": "credentials.redis_addr",
	"profile":    "credentials.profile",
}

type Option func(*runtime)

// WithCredentialStore makes every command use store instead of the configured
// backend.
func WithCredentialStore(store credstore.Store) Option {
	return func(rt *runtime) {
		rt.store = store
	}
}

// WithLogger replaces the logger built from the configured level.
func WithLogger(l *zap.Logger) Option {
	return func(rt *runtime) {
		rt.log = l
	}
}

// runtime is the object graph shared by the commands of one invocation.
type runtime struct {
	log     *zap.Logger
	store   credstore.Store
	client  *api.Client
	session *session.Service
	cart    *cart.Service
	catalog *catalog.Service
	app     *view.App
	closers []func() error
}

func NewRootCommand(opts ...Option) *cobra.Command {
	return newRootCommand(newRuntime(opts))
}

// Execute runs the storefront CLI with the process arguments.
func Execute(ctx context.Context, opts ...Option) error {
	rt := newRuntime(opts)
	// PersistentPostRunE is skipped when a command fails.
	defer func() { _ = rt.close() }()
	return newRootCommand(rt).ExecuteContext(ctx)
}

func newRuntime(opts []Option) *runtime {
	rt := &runtime{}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

func newRootCommand(rt *runtime) *cobra.Command {
	var configFile string
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Browse the catalogue, manage the cart and place orders",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			v, err := config.NewViper(configFile)
			if err != nil {
				return err
			}
			if err := bindFlags(v, cmd); err != nil {
				return err
			}
			cfg, err := config.LoadClient(v)
			if err != nil {
				return err
			}
			return rt.start(cmd.Context(), cfg)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return rt.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	flags.String("api-url", "", "base url of the storefront api")
	flags.Duration("timeout", 0, "timeout of a single api request")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("store", "", "credential store backend (sqlite, redis, memory)")
	flags.String("store-path", "", "sqlite credential database file")
	flags.String("redis-addr", "", "redis address for the redis credential store")
	flags.String("profile", "", "credential profile name")

	root.AddCommand(
		newLoginCommand(rt),
		newRegisterCommand(rt),
		newLogoutCommand(rt),
		newWhoamiCommand(rt),
		newProductsCommand(rt),
		newProductCommand(rt),
		newSeedCommand(rt),
		newCartCommand(rt),
		newCheckoutCommand(rt),
		newOrdersCommand(rt),
	)
	return root
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range boundFlags {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

func (rt *runtime) start(ctx context.Context, cfg *config.Client) error {
	if rt.log == nil {
		lg, err := logger.New(cfg.LogLevel)
		if err != nil {
			return err
		}
		rt.log = lg
		rt.closers = append(rt.closers, func() error {
			_ = lg.Sync()
			return nil
		})
	}

	if rt.store == nil {
		store, closeFn, err := openCredentialStore(cfg.Credentials)
		if err != nil {
			return err
		}
		rt.store = store
		rt.closers = append(rt.closers, closeFn)
	}

	client, err := api.NewClient(cfg.APIURL,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithBreaker(api.BreakerSettings{
			MaxFailures: cfg.Breaker.MaxFailures,
			OpenTimeout: cfg.Breaker.OpenTimeout,
		}),
	)
	if err != nil {
		return err
	}
	rt.client = client

	rt.session = session.NewService(client, rt.store, rt.log.Named("session"))
	rt.cart = cart.NewService(client, rt.session, rt.log.Named("cart"))
	rt.cart.Bind(rt.session)
	rt.catalog = catalog.NewService(client, rt.log.Named("catalog"))
	rt.app = view.NewApp(rt.session, rt.cart, rt.catalog, client, rt.log.Named("view"))

	rt.session.Initialize(ctx)
	return nil
}

func (rt *runtime) close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}

func openCredentialStore(cfg config.CredentialStore) (credstore.Store, func() error, error) {
	switch cfg.Backend {
	case config.StoreSQLite:
		store, err := credstore.NewSQLiteStore(cfg.Path, cfg.Profile)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		return credstore.NewRedisStore(client, cfg.Profile, cfg.TTL), client.Close, nil
	case config.StoreMemory:
		return credstore.NewMemoryStore(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown credential store %q", cfg.Backend)
	}
}

// visit navigates to path and fails when the guard sends the user to log in.
func (rt *runtime) visit(ctx context.Context, path string) (view.Page, error) {
	page, err := rt.app.Visit(ctx, path)
	if err != nil {
		return view.Page{}, err
	}
	if page.Path == guard.LoginPath && page.From != "" {
		return page, errNotLoggedIn
	}
	return page, nil
}

// report prints the notice of act and turns a failed action into an error.
func report(cmd *cobra.Command, act view.Action) error {
	if act.Navigate == guard.LoginPath {
		return errNotLoggedIn
	}
	if act.Failed {
		return errors.New(act.Notice)
	}
	if act.Notice != "" {
		fmt.Fprintln(cmd.OutOrStdout(), act.Notice)
	}
	return nil
}
