package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/acvp-tools/libacvp-go/cmd/acvp-client/cmdutil"
	"github.com/acvp-tools/libacvp-go/internal/action"
	"github.com/acvp-tools/libacvp-go/internal/cli/prompt"
	"github.com/acvp-tools/libacvp-go/internal/logger"
	"github.com/acvp-tools/libacvp-go/internal/refdut"
	"github.com/acvp-tools/libacvp-go/internal/session"
	"github.com/acvp-tools/libacvp-go/internal/telemetry"
	"github.com/acvp-tools/libacvp-go/internal/totp"
	"github.com/acvp-tools/libacvp-go/internal/transport"
	"github.com/acvp-tools/libacvp-go/internal/useragent"
	"github.com/acvp-tools/libacvp-go/pkg/acvp"
	"github.com/acvp-tools/libacvp-go/pkg/acvp/symmetric"
	"github.com/acvp-tools/libacvp-go/pkg/config"
	"github.com/spf13/cobra"
)

var (
	runSeed    string
	runFresh   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an ACVP test session: fetch vector sets, compute, submit",
	Long: `run drives one ACVP test session end to end: it registers the
client's symmetric-cipher capabilities, fetches each outstanding vector
set, dispatches it to the registered handler, and submits the response.

The DUT driven here is a reference Triple-DES implementation
(internal/refdut) built on the standard library — the real device
under test is out of this module's scope and is meant to be swapped in
by whoever embeds this library.`,
	RunE: runSession,
}

func init() {
	runCmd.Flags().StringVar(&runSeed, "seed", "", "TOTP seed (base64); prompted if omitted")
	runCmd.Flags().BoolVar(&runFresh, "fresh", false, "Ignore any persisted session and register a new one")
}

func registerDispatcher() *acvp.Dispatcher {
	d := acvp.NewDispatcher()
	dut := refdut.New()

	for _, algo := range []string{
		"ACVP-TDES-ECB", "ACVP-TDES-CBC", "ACVP-TDES-OFB",
		"ACVP-TDES-CFB1", "ACVP-TDES-CFB8", "ACVP-TDES-CFB64",
	} {
		d.Register(algo, symmetric.NewHandler(dut), acvp.Capability{
			Algorithm: algo,
			Revision:  "1.0",
			Modes:     []string{"encrypt", "decrypt"},
		})
	}
	return d
}

func runSession(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(cmdutil.Flags.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cmdutil.Flags.Server != "" {
		cfg.Server.Host = cmdutil.Flags.Server
	}
	cfg.ApplyEnvOverrides()

	if err := logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: cfg.Logging.Output}); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}

	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "acvp-client",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() { _ = shutdownTracing(ctx) }()

	shutdownProfiling, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:      cfg.Telemetry.Profiling.Enabled,
		ServiceName:  "acvp-client",
		Endpoint:     cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes: cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("initializing profiling: %w", err)
	}
	defer func() { _ = shutdownProfiling() }()

	metrics := telemetry.NewMetrics(nil)

	seed := runSeed
	if seed == "" {
		seed, err = prompt.TOTPSeed()
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	tr, err := transport.New(transport.Config{
		CAFile:         cfg.TLS.CAFile,
		ClientCertFile: cfg.TLS.ClientCert,
		ClientKeyFile:  cfg.TLS.ClientKey,
		UserAgent:      useragent.Build(logger.With()),
	})
	if err != nil {
		return fmt.Errorf("building transport: %w", err)
	}

	loginURL := fmt.Sprintf("https://%s:%d/acvp/v1/login", cfg.Server.Host, cfg.Server.Port)
	login := func(ctx context.Context) (string, error) {
		code, terr := totp.Generate(seed)
		if terr != nil {
			return "", fmt.Errorf("generating TOTP code: %w", terr)
		}
		status, body, perr := tr.Post(ctx, loginURL, map[string]string{"password": code}, transport.NoCredential)
		if perr != nil {
			return "", perr
		}
		var resp struct {
			AccessToken string `json:"accessToken"`
		}
		if status != 200 {
			return "", fmt.Errorf("login rejected (status %d): %s", status, string(body))
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", err
		}
		metrics.AuthRefreshesTotal.Inc()
		return resp.AccessToken, nil
	}

	coord := action.New(tr, login)

	store, err := session.Open(cfg.Session.URLFile)
	if err != nil {
		return fmt.Errorf("opening session store: %w", err)
	}

	dispatcher := registerDispatcher()

	sessionURL, err := resolveSessionURL(ctx, cfg, store, coord, dispatcher)
	if err != nil {
		return err
	}

	logger.InfoCtx(ctx, "session ready", "session_url", sessionURL)

	return runVectorSetLoop(ctx, cfg, coord, dispatcher, store, sessionURL, metrics)
}

// resolveSessionURL returns the session URL to work with: the
// persisted one (after confirming resumption, unless --fresh was
// passed), or a newly registered one.
func resolveSessionURL(ctx context.Context, cfg *config.Config, store *session.Store, coord *action.Coordinator, dispatcher *acvp.Dispatcher) (string, error) {
	if !runFresh {
		if url, err := store.URL(); err == nil {
			resume, perr := prompt.ConfirmResumeSession(url)
			if perr != nil {
				return "", cmdutil.HandleAbort(perr)
			}
			if resume {
				return url, nil
			}
		}
	}

	registerURL := fmt.Sprintf("https://%s:%d/acvp/v1/testSessions", cfg.Server.Host, cfg.Server.Port)
	status, body, err := coord.Post(ctx, registerURL, dispatcher.Capabilities(), false)
	if err != nil {
		return "", fmt.Errorf("registering test session: %w", err)
	}
	if status != 200 && status != 201 {
		return "", fmt.Errorf("test session registration rejected (status %d): %s", status, string(body))
	}

	var resp struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parsing test session response: %w", err)
	}
	if resp.URL == "" {
		return "", fmt.Errorf("server did not return a session url")
	}

	if err := store.Save(resp.URL); err != nil {
		return "", fmt.Errorf("persisting session url: %w", err)
	}
	return resp.URL, nil
}

// runVectorSetLoop fetches the session's vector-set index, processes
// each one through the dispatcher, and submits results.
func runVectorSetLoop(ctx context.Context, cfg *config.Config, coord *action.Coordinator, dispatcher *acvp.Dispatcher, store *session.Store, sessionURL string, metrics *telemetry.Metrics) error {
	status, body, err := coord.Get(ctx, sessionURL+"/vectorSets")
	if err != nil {
		return fmt.Errorf("fetching vector-set index: %w", err)
	}
	if status != 200 {
		return fmt.Errorf("vector-set index rejected (status %d): %s", status, string(body))
	}

	var index struct {
		VectorSetURLs []string `json:"vectorSetUrls"`
	}
	if err := json.Unmarshal(body, &index); err != nil {
		return fmt.Errorf("parsing vector-set index: %w", err)
	}

	sessionCtx := acvp.New(cfg.Server.Host, cfg.Server.Port)

	for _, vsURL := range index.VectorSetURLs {
		if err := processVectorSet(ctx, coord, dispatcher, sessionCtx, vsURL, metrics); err != nil {
			return err
		}
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Processed %d vector set(s)", len(index.VectorSetURLs)))
	return store.Clear()
}

func processVectorSet(ctx context.Context, coord *action.Coordinator, dispatcher *acvp.Dispatcher, sessionCtx *acvp.Ctx, vsURL string, metrics *telemetry.Metrics) error {
	status, body, err := coord.Get(ctx, vsURL)
	if err != nil {
		return fmt.Errorf("fetching vector set %s: %w", vsURL, err)
	}
	if status != 200 {
		return fmt.Errorf("vector set %s rejected (status %d): %s", vsURL, status, string(body))
	}

	var meta struct {
		Algorithm string `json:"algorithm"`
	}
	if err := json.Unmarshal(body, &meta); err != nil {
		return fmt.Errorf("parsing vector set %s: %w", vsURL, err)
	}

	handler, err := dispatcher.Dispatch(meta.Algorithm)
	if err != nil {
		return err
	}

	ctx, span := telemetry.StartSpan(ctx, "vector_set."+meta.Algorithm)
	defer span.End()

	doc, err := handler.Handle(ctx, sessionCtx, body)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return err
	}

	metrics.VectorSetsFetched.WithLabelValues(meta.Algorithm).Inc()

	status, respBody, err := coord.PostPending(ctx, vsURL+"/results", doc)
	if err != nil {
		return fmt.Errorf("submitting results for %s: %w", vsURL, err)
	}
	if status != 200 {
		return fmt.Errorf("result submission for %s rejected (status %d): %s", vsURL, status, string(respBody))
	}
	return nil
}
