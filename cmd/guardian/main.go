package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/guardian/internal/api"
	"github.com/julianstephens/guardian/internal/cli"
	"github.com/julianstephens/guardian/internal/cli/system"
	"github.com/julianstephens/guardian/internal/config"
	"github.com/julianstephens/guardian/internal/constants"
	apperrors "github.com/julianstephens/guardian/internal/errors"
	"github.com/julianstephens/guardian/internal/i18n"
	"github.com/julianstephens/guardian/internal/keyring"
	"github.com/julianstephens/guardian/internal/logger"
	"github.com/julianstephens/guardian/internal/router"
	"github.com/julianstephens/guardian/internal/session"
	"github.com/julianstephens/guardian/internal/storage"
)

var CLI struct {
	Version   kong.VersionFlag
	EnvFile   string `help:"Dotenv file read before the environment." default:".env" type:"path"`
	APIURL    string `name:"api-url" help:"API base URL. Overrides GUARDIAN_API_URL."`
	Token     string `help:"Bearer token. Overrides the keyring and GUARDIAN_TOKEN."`
	Locale    string `help:"Message locale (en-US, pt-BR). Remembered for later runs."`
	ConfigDir string `help:"Directory for the cache and logs. Overrides GUARDIAN_CONFIG_DIR."`
	Debug     bool   `help:"Enable debug logging."`

	Tui         system.TuiCmd      `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Dashboard   cli.DashboardCmd   `cmd:"" help:"Show today's habits, mana and active challenges."`
	Habit       cli.HabitCmd       `cmd:"" help:"Manage habits."`
	Profile     cli.ProfileCmd     `cmd:"" help:"Show or update your profile."`
	Mana        cli.ManaCmd        `cmd:"" help:"Show your mana and level."`
	Leaderboard cli.LeaderboardCmd `cmd:"" help:"Show the leaderboard."`
	Challenge   cli.ChallengeCmd   `cmd:"" help:"Browse challenges."`
	Login       cli.LoginCmd       `cmd:"" help:"Sign in."`
	Register    cli.RegisterCmd    `cmd:"" help:"Create an account."`
	Logout      cli.LogoutCmd      `cmd:"" help:"Sign out and forget the token."`
	Whoami      cli.WhoamiCmd      `cmd:"" help:"Show the signed-in user."`
	Doctor      system.DoctorCmd   `cmd:"" help:"Run diagnostics."`
}

// commands that work without a token
var public = map[string]bool{
	"tui":      true,
	"login":    true,
	"register": true,
	"logout":   true,
	"whoami":   true,
	"doctor":   true,
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Terminal client for the Guardian habit tracker"),
		kong.UsageOnError(),
		kong.Vars{"version": constants.Version},
	)
	command := strings.Fields(kctx.Command())[0]

	cfg, err := loadConfig()
	if err != nil {
		apperrors.Fatal(err)
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: cfg.ConfigDir, Quiet: command == "tui"}); err != nil {
		apperrors.Fatal(err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	appCtx, cleanup, err := newContext(ctx, cfg)
	if err != nil {
		apperrors.Fatal(err)
	}
	defer cleanup()

	if !public[command] {
		if err := appCtx.RequireToken(); err != nil {
			cleanup()
			apperrors.Fatal(err)
		}
	}

	if err := kctx.Run(appCtx); err != nil {
		cleanup()
		apperrors.Fatal(err)
	}
}

// loadConfig reads the environment and applies the global flags on top
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(CLI.EnvFile)
	if err != nil {
		return config.Config{}, err
	}
	if CLI.APIURL != "" {
		cfg.APIURL = CLI.APIURL
	}
	if CLI.Token != "" {
		cfg.Token = CLI.Token
	}
	if CLI.ConfigDir != "" {
		dir, err := config.ExpandHome(CLI.ConfigDir)
		if err != nil {
			return config.Config{}, err
		}
		cfg.ConfigDir = dir
	}
	if CLI.Debug {
		cfg.Debug = true
	}
	return cfg, cfg.Validate()
}

// newContext wires the shared dependencies. A cache that can't be opened is
// logged and skipped.
func newContext(ctx context.Context, cfg config.Config) (*cli.Context, func(), error) {
	store := storage.NewStore(cfg.CachePath())
	if err := store.Init(ctx); err != nil {
		logger.Warn("cache unavailable, continuing without it", "path", cfg.CachePath(), "error", err)
		store = nil
	}
	cleanup := func() {
		if store != nil {
			store.Close()
		}
	}

	// a nil *Store must not reach the Cache interface
	var sess *session.Session
	if store != nil {
		sess = session.New(store)
	} else {
		sess = session.New(nil)
	}
	if err := sess.Restore(ctx); err != nil {
		logger.Warn("failed to restore cached user", "error", err)
	}

	tr, err := i18n.NewTranslator(resolveLocale(ctx, cfg, store))
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	tokens := keyring.NewTokenSource(cfg.Token)
	return &cli.Context{
		Ctx:        ctx,
		Config:     cfg,
		Client:     api.New(api.Options{BaseURL: cfg.APIURL, Timeout: cfg.Timeout, Tokens: tokens}),
		Session:    sess,
		Tokens:     tokens,
		Store:      store,
		Translator: tr,
		Router:     router.New(),
		Out:        os.Stdout,
	}, cleanup, nil
}

// resolveLocale prefers the --locale flag, which is stored for later runs,
// then the stored locale, then the configured one.
func resolveLocale(ctx context.Context, cfg config.Config, store *storage.Store) string {
	if store == nil {
		if CLI.Locale != "" {
			return CLI.Locale
		}
		return cfg.Locale
	}
	if CLI.Locale != "" {
		if err := store.SetSetting(ctx, storage.SettingLocale, CLI.Locale); err != nil {
			logger.Warn("failed to remember locale", "error", err)
		}
		return CLI.Locale
	}
	saved, err := store.GetSetting(ctx, storage.SettingLocale)
	if err != nil {
		if !errors.Is(err, storage.ErrSettingNotFound) {
			logger.Warn("failed to read stored locale", "error", err)
		}
		return cfg.Locale
	}
	return saved
}
