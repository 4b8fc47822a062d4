// Command rgscli is a developer console for a remote gaming server. It
// drives the rgs client from the command line, keeps session credentials in
// the OS keychain, and can run a local archive service for fetched replays.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/MJE43/rgs-client-go/internal/config"
	"github.com/MJE43/rgs-client-go/internal/credstore"
	"github.com/MJE43/rgs-client-go/internal/replayhttp"
	"github.com/MJE43/rgs-client-go/internal/replaystore"
	"github.com/MJE43/rgs-client-go/launch"
	"github.com/MJE43/rgs-client-go/rgs"
)

const usage = `rgscli - remote gaming server console

Usage:
  rgscli <command> [flags]

Commands:
  auth        authenticate the stored session
  balance     fetch the player balance
  play        place a bet
  end-round   settle the active round
  end-event   acknowledge a round event
  search      search recorded rounds
  replay      fetch a replay and print it
  launch      parse a game launch URL
  session     store or clear session credentials
  serve       run the local replay archive API

Common flags:
  -config     config file path (default config.yaml)
  -env        environment profile from the config file
  -log        log level (debug, info, warn, error)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cmd, args := os.Args[1], os.Args[2:]
	if err := run(cmd, args); err != nil {
		log.Fatal().Err(err).Str("command", cmd).Msg("command failed")
	}
}

type app struct {
	cfg   *config.Config
	env   *config.EnvironmentConfig
	creds *credstore.KeyringStore
}

// commonFlags registers the flags every subcommand shares.
func commonFlags(fs *flag.FlagSet) (configFile, envName, logLevel *string) {
	configFile = fs.String("config", "config.yaml", "config file path")
	envName = fs.String("env", "", "environment profile")
	logLevel = fs.String("log", "", "log level override")
	return
}

func run(cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	configFile, envName, logLevel := commonFlags(fs)

	switch cmd {
	case "auth", "balance", "end-round":
		if err := fs.Parse(args); err != nil {
			return err
		}
		a, err := newApp(*configFile, *envName, *logLevel)
		if err != nil {
			return err
		}
		return a.runSimple(cmd)

	case "play":
		amount := fs.String("amount", "", "bet amount in display units (e.g. 1.00)")
		mode := fs.String("mode", "base", "game mode")
		if err := fs.Parse(args); err != nil {
			return err
		}
		a, err := newApp(*configFile, *envName, *logLevel)
		if err != nil {
			return err
		}
		return a.runPlay(*amount, *mode)

	case "end-event":
		event := fs.Int("event", 0, "event index to acknowledge")
		if err := fs.Parse(args); err != nil {
			return err
		}
		a, err := newApp(*configFile, *envName, *logLevel)
		if err != nil {
			return err
		}
		return a.runEndEvent(*event)

	case "search":
		mode := fs.String("mode", "", "restrict to game mode")
		bookID := fs.Int64("book", 0, "restrict to book id")
		if err := fs.Parse(args); err != nil {
			return err
		}
		a, err := newApp(*configFile, *envName, *logLevel)
		if err != nil {
			return err
		}
		return a.runSearch(*mode, *bookID)

	case "replay":
		game := fs.String("game", "", "game name")
		version := fs.String("version", "", "game version")
		mode := fs.String("mode", "", "game mode")
		event := fs.String("event", "", "round event id")
		if err := fs.Parse(args); err != nil {
			return err
		}
		a, err := newApp(*configFile, *envName, *logLevel)
		if err != nil {
			return err
		}
		return a.runReplay(*game, *version, *mode, *event)

	case "launch":
		if err := fs.Parse(args); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return errors.New("usage: rgscli launch <url>")
		}
		return runLaunch(fs.Arg(0))

	case "session":
		sessionID := fs.String("set", "", "session id to store")
		clear := fs.Bool("clear", false, "remove stored credentials")
		if err := fs.Parse(args); err != nil {
			return err
		}
		a, err := newApp(*configFile, *envName, *logLevel)
		if err != nil {
			return err
		}
		return a.runSession(*sessionID, *clear)

	case "serve":
		if err := fs.Parse(args); err != nil {
			return err
		}
		a, err := newApp(*configFile, *envName, *logLevel)
		if err != nil {
			return err
		}
		return a.runServe(*configFile)

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func newApp(configFile, envName, logLevel string) (*app, error) {
	loader, err := config.Load(configFile, log.Logger)
	if err != nil {
		return nil, err
	}
	cfg := loader.Config()

	if logLevel == "" {
		logLevel = cfg.LogLevel
	}
	setupLogger(logLevel)

	env, err := cfg.Environment(envName)
	if err != nil {
		return nil, err
	}

	home, _ := os.UserHomeDir()
	creds := credstore.NewKeyringStore("rgs-client", home+"/.rgscli/secrets.json")

	return &app{cfg: cfg, env: env, creds: creds}, nil
}

// client assembles an rgs client for the selected environment. Stored
// credentials act as the ambient context; the config file's values fill in
// anything the keychain lacks.
func (a *app) client() *rgs.Client {
	sessionID := a.env.SessionID
	if stored, err := a.creds.GetSessionID(a.env.Name); err == nil && stored != "" {
		sessionID = stored
	}
	return rgs.NewClient(rgs.Config{
		Provider: &rgs.StaticProvider{
			SessionID:  sessionID,
			ServerHost: a.env.ServerHost,
			Language:   a.env.Language,
			Currency:   a.env.Currency,
		},
		UserAgent: a.cfg.UserAgent,
	})
}

func (a *app) runSimple(cmd string) error {
	ctx := context.Background()
	c := a.client()
	switch cmd {
	case "auth":
		result, err := c.Authenticate(ctx, rgs.AuthenticateRequest{})
		if err != nil {
			return err
		}
		return printJSON(result)
	case "balance":
		result, err := c.FetchBalance(ctx, rgs.BalanceRequest{})
		if err != nil {
			return err
		}
		return printJSON(result)
	case "end-round":
		result, err := c.EndRound(ctx, rgs.EndRoundRequest{})
		if err != nil {
			return err
		}
		return printJSON(result)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func (a *app) runPlay(amount, mode string) error {
	if amount == "" {
		return errors.New("play: -amount is required")
	}
	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return fmt.Errorf("play: bad amount %q: %w", amount, err)
	}

	result, err := a.client().Play(context.Background(), rgs.PlayRequest{
		Amount: dec,
		Mode:   mode,
	})
	if err != nil {
		return err
	}
	if result.StatusCode.IsActiveBetInProgress() {
		log.Warn().Msg("an earlier round is still open; run end-round first")
	}
	return printJSON(result)
}

func (a *app) runEndEvent(event int) error {
	result, err := a.client().EndEvent(context.Background(), rgs.EndEventRequest{Event: event})
	if err != nil {
		return err
	}
	return printJSON(result)
}

func (a *app) runSearch(mode string, bookID int64) error {
	result, err := a.client().SearchForResult(context.Background(), rgs.SearchForResultRequest{
		Mode:   mode,
		BookID: bookID,
	})
	if err != nil {
		return err
	}
	return printJSON(result)
}

func (a *app) runReplay(game, version, mode, event string) error {
	raw, err := a.client().FetchReplay(context.Background(), rgs.ReplayRequest{
		Game:    game,
		Version: version,
		Mode:    mode,
		Event:   event,
	})
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return nil
}

func runLaunch(rawURL string) error {
	params, err := launch.Parse(rawURL)
	if err != nil {
		return err
	}
	return printJSON(params)
}

func (a *app) runSession(sessionID string, clear bool) error {
	switch {
	case clear:
		if err := a.creds.DeleteAll(a.env.Name); err != nil {
			return err
		}
		log.Info().Str("env", a.env.Name).Msg("credentials cleared")
		return nil
	case sessionID != "":
		if err := a.creds.SetSessionID(a.env.Name, sessionID); err != nil {
			return err
		}
		if err := a.creds.SetServerHost(a.env.Name, a.env.ServerHost); err != nil {
			return err
		}
		log.Info().Str("env", a.env.Name).Msg("session stored")
		return nil
	default:
		stored, err := a.creds.GetSessionID(a.env.Name)
		if errors.Is(err, credstore.ErrNotFound) {
			log.Info().Str("env", a.env.Name).Msg("no session stored")
			return nil
		}
		if err != nil {
			return err
		}
		log.Info().Str("env", a.env.Name).Int("length", len(stored)).Msg("session present")
		return nil
	}
}

func (a *app) runServe(configFile string) error {
	loader, err := config.Load(configFile, log.Logger)
	if err != nil {
		return err
	}
	loader.Watch()
	cfg := loader.Config()

	store, err := replaystore.New(cfg.Archive.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := replayhttp.New(store, a.client(), log.Logger, cfg.Archive.Port, cfg.Archive.Token)
	if err := srv.Start(); err != nil {
		return err
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func setupLogger(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
