package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	httpadapter "github.com/shalev396/Call-Filter/internal/adapter/http"
	"github.com/shalev396/Call-Filter/internal/domain"
	"github.com/shalev396/Call-Filter/internal/port"
)

const usage = `usage:
  callfilter eval --config FILE --caller NUM [--at RFC3339] [--timezone NAME]
  callfilter eval --server URL --account ID --caller NUM [--at RFC3339] [--timezone NAME]
  callfilter validate --config FILE
  callfilter offset [--at RFC3339] [--timezone NAME]`

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	var code int
	switch os.Args[1] {
	case "eval":
		code = evalCmd(os.Args[2:], logger)
	case "validate":
		code = validateCmd(os.Args[2:], logger)
	case "offset":
		code = offsetCmd(os.Args[2:], logger)
	default:
		fmt.Fprintln(os.Stderr, usage)
		code = 2
	}
	os.Exit(code)
}

func evalCmd(args []string, logger zerolog.Logger) int {
	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	cfgPath := fs.String("config", "", "account config file (YAML or JSON)")
	server := fs.String("server", "", "call filter server URL")
	account := fs.String("account", "", "account ID on the server")
	caller := fs.String("caller", "", "caller number")
	at := fs.String("at", "", "evaluation instant (RFC3339), default now")
	tz := fs.String("timezone", "", "timezone override (israel, UTC+H, IANA name)")
	fs.Parse(args)

	now, err := parseAt(*at)
	if err != nil {
		logger.Error().Err(err).Msg("invalid --at")
		return 2
	}

	var cfg *domain.Config
	switch {
	case *cfgPath != "":
		cfg, err = readConfig(*cfgPath)
	case *server != "" && *account != "":
		var fetcher port.ConfigFetcher = httpadapter.NewHTTPConfigFetcher(*server)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		cfg, err = fetcher.FetchConfig(ctx, *account)
		cancel()
	default:
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}
	if err != nil {
		logger.Error().Err(err).Msg("load config failed")
		return 2
	}

	name := cfg.Schedule.Timezone
	if *tz != "" {
		name = *tz
	}
	// An unresolvable timezone leaves a nil policy; the engine then denies with reason error.
	policy, err := domain.PolicyFor(name)
	if err != nil {
		logger.Warn().Err(err).Str("timezone", name).Msg("timezone not resolvable")
	}

	d := domain.NewEngine(policy).Evaluate(*cfg, *caller, now)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(d)
	if d.Allow {
		return 0
	}
	return 1
}

func validateCmd(args []string, logger zerolog.Logger) int {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	cfgPath := fs.String("config", "", "account config file (YAML or JSON)")
	fs.Parse(args)
	if *cfgPath == "" {
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}
	cfg, err := readConfig(*cfgPath)
	if err != nil {
		logger.Error().Err(err).Msg("load config failed")
		return 2
	}
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Str("file", *cfgPath).Msg("config invalid")
		return 1
	}
	fmt.Printf("%s: ok (%d whitelist entries, %d scheduled days)\n", *cfgPath, len(cfg.Whitelist), len(cfg.Schedule.Days))
	return 0
}

func offsetCmd(args []string, logger zerolog.Logger) int {
	fs := flag.NewFlagSet("offset", flag.ExitOnError)
	at := fs.String("at", "", "instant (RFC3339), default now")
	tz := fs.String("timezone", "", "timezone (israel, UTC+H, IANA name)")
	fs.Parse(args)

	now, err := parseAt(*at)
	if err != nil {
		logger.Error().Err(err).Msg("invalid --at")
		return 2
	}
	policy, err := domain.PolicyFor(*tz)
	if err != nil {
		logger.Error().Err(err).Msg("invalid --timezone")
		return 2
	}
	fmt.Printf("%s UTC%+d\n", now.Format(time.RFC3339), policy.OffsetHours(now))
	return 0
}

func parseAt(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// readConfig parses a YAML file; JSON documents parse as YAML too.
func readConfig(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}
