package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli"

	"github.com/kbukum/restauth/config"
	"github.com/kbukum/restauth/httpclient"
	"github.com/kbukum/restauth/logger"
	"github.com/kbukum/restauth/observability"
	"github.com/kbukum/restauth/version"
)

const shutdownTimeout = 5 * time.Second

// runner holds the state shared by the commands of one invocation.
type runner struct {
	out    io.Writer
	errOut io.Writer

	cfg      AppConfig
	log      *logger.Logger
	client   *httpclient.Client
	ctx      context.Context
	cancel   context.CancelFunc
	shutdown []func(context.Context) error
}

var requestFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "data, d",
		Usage: "request body, or @path to read it from a file",
	},
	cli.StringSliceFlag{
		Name:  "header, H",
		Usage: `extra request header as "Name: value" (repeatable)`,
	},
	cli.BoolFlag{
		Name:  "include, i",
		Usage: "print the response headers",
	},
}

func newApp(out, errOut io.Writer) *cli.App {
	r := &runner{out: out, errOut: errOut}

	app := cli.NewApp()
	app.Name = serviceName
	app.Usage = "send authenticated requests to a Jira REST API"
	app.UsageText = "restauth [global options] <command> [arguments...]"
	app.Version = version.Get().Short()
	app.Writer = out
	app.ErrWriter = errOut
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config, c",
			Usage:  "path to config.yml (default: searched in ./cmd/restauth, ./config, . and the user config dir)",
			EnvVar: "RESTAUTH_CONFIG",
		},
		cli.StringFlag{
			Name:   "env-file",
			Usage:  "path to a .env file loaded before environment overrides",
			EnvVar: "RESTAUTH_ENV_FILE",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "override logging.level (trace, debug, info, warn, error, disabled)",
		},
		cli.StringFlag{
			Name:  "otlp-endpoint",
			Usage: "export traces and metrics to this OTLP/HTTP collector (host:port)",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "request",
			Aliases:   []string{"r"},
			Usage:     "send one request and print the response",
			ArgsUsage: "METHOD URL",
			Flags:     requestFlags,
			Action:    r.withClient(r.request),
		},
		{
			Name:   "login",
			Usage:  "establish a cookie session and print the stored cookie names",
			Action: r.withClient(r.login),
		},
		{
			Name:   "config",
			Usage:  "print the resolved configuration with secrets masked",
			Action: r.showConfig,
		},
	}
	app.After = r.close
	return app
}

func (r *runner) withClient(action func(*cli.Context) error) func(*cli.Context) error {
	return func(c *cli.Context) error {
		if err := r.setup(c); err != nil {
			return err
		}
		return action(c)
	}
}

// loadConfig resolves, overrides, defaults and validates the configuration.
func (r *runner) loadConfig(c *cli.Context) error {
	var opts []config.LoaderOption
	if path := c.GlobalString("config"); path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	if path := c.GlobalString("env-file"); path != "" {
		opts = append(opts, config.WithEnvFile(path))
	}
	if err := config.LoadConfig(serviceName, &r.cfg, opts...); err != nil {
		return err
	}
	if level := c.GlobalString("log-level"); level != "" {
		r.cfg.Logging.Level = level
	}
	if endpoint := c.GlobalString("otlp-endpoint"); endpoint != "" {
		r.cfg.Observability.OTLPEndpoint = endpoint
	}
	r.cfg.ApplyDefaults()
	return r.cfg.Validate()
}

// setup loads the configuration and builds the logger, telemetry and client.
func (r *runner) setup(c *cli.Context) error {
	if err := r.loadConfig(c); err != nil {
		return err
	}

	if r.cfg.Logging.Output == "stderr" {
		r.log = logger.NewWithWriter(&r.cfg.Logging, r.cfg.Name, r.errOut)
	} else {
		r.log = logger.New(&r.cfg.Logging, r.cfg.Name)
	}
	logger.SetGlobalLogger(r.log)

	r.ctx, r.cancel = signal.NotifyContext(context.Background(), os.Interrupt)

	clientOpts := []httpclient.Option{httpclient.WithLogger(r.log)}
	if r.cfg.Observability.Enabled() {
		metrics, err := r.initTelemetry()
		if err != nil {
			return err
		}
		clientOpts = append(clientOpts, httpclient.WithMetrics(metrics))
	}

	client, err := httpclient.New(r.cfg.Jira, clientOpts...)
	if err != nil {
		return err
	}
	r.client = client
	return nil
}

func (r *runner) initTelemetry() (*observability.Metrics, error) {
	obs := r.cfg.Observability

	tcfg := observability.DefaultTracerConfig(r.cfg.Name)
	tcfg.ServiceVersion = version.Version
	tcfg.Endpoint = obs.OTLPEndpoint
	tcfg.Insecure = obs.Insecure
	tcfg.SampleRate = obs.SampleRate
	tp, err := observability.InitTracer(r.ctx, tcfg)
	if err != nil {
		return nil, err
	}
	r.shutdown = append(r.shutdown, tp.Shutdown)

	mcfg := observability.DefaultMeterConfig(r.cfg.Name)
	mcfg.ServiceVersion = version.Version
	mcfg.Endpoint = obs.OTLPEndpoint
	mcfg.Insecure = obs.Insecure
	mcfg.Interval = obs.MetricInterval
	mp, err := observability.InitMeter(r.ctx, &mcfg)
	if err != nil {
		return nil, err
	}
	r.shutdown = append(r.shutdown, mp.Shutdown)

	return observability.NewMetrics(observability.Meter(serviceName))
}

// close flushes telemetry. It runs after every command.
func (r *runner) close(*cli.Context) error {
	if r.cancel != nil {
		defer r.cancel()
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	for _, fn := range r.shutdown {
		errs = append(errs, fn(ctx))
	}
	return errors.Join(errs...)
}

func (r *runner) request(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("request expects METHOD and URL, got %d arguments", c.NArg())
	}
	method, err := httpclient.ParseMethod(c.Args().Get(0))
	if err != nil {
		return err
	}
	body, err := readBody(c.String("data"))
	if err != nil {
		return err
	}
	headers, err := parseHeaders(c.StringSlice("header"))
	if err != nil {
		return err
	}

	if r.cfg.Jira.UseCookies {
		if cfg := r.client.Config(); cfg.HasCredentials() {
			if err := r.ensureSession(); err != nil {
				return err
			}
		}
	}

	resp, err := r.client.Execute(r.ctx, httpclient.Request{
		Method:  method,
		URL:     c.Args().Get(1),
		Body:    body,
		Headers: headers,
	})
	if err != nil {
		return err
	}

	r.printResponse(resp, c.Bool("include"))
	if !resp.IsSuccess() {
		return fmt.Errorf("server answered %s", resp.Status)
	}
	return nil
}

func (r *runner) showConfig(c *cli.Context) error {
	if err := r.loadConfig(c); err != nil {
		return err
	}
	newConfigSummary(&r.cfg).write(r.out)
	return nil
}

func (r *runner) login(*cli.Context) error {
	resp, err := r.client.EstablishSession(r.ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, resp.Status)
	if !r.client.IsAuthenticated() {
		return fmt.Errorf("login rejected: %s", resp.Status)
	}
	for _, name := range r.client.CookieNames() {
		fmt.Fprintln(r.out, name)
	}
	return nil
}

// ensureSession trades the configured credentials for a session cookie.
func (r *runner) ensureSession() error {
	resp, err := r.client.EstablishSession(r.ctx)
	if err != nil {
		return err
	}
	if !r.client.IsAuthenticated() {
		return fmt.Errorf("login rejected: %s", resp.Status)
	}
	return nil
}

func (r *runner) printResponse(resp *httpclient.Response, include bool) {
	fmt.Fprintln(r.out, resp.Status)
	if include {
		names := make([]string, 0, len(resp.Header))
		for name := range resp.Header {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			for _, v := range resp.Header[name] {
				fmt.Fprintf(r.out, "%s: %s\n", name, v)
			}
		}
		fmt.Fprintln(r.out)
	}
	if len(resp.Body) > 0 {
		fmt.Fprintln(r.out, string(resp.Body))
	}
}

// readBody returns nil for an empty value and reads "@path" from disk.
func readBody(data string) ([]byte, error) {
	switch {
	case data == "":
		return nil, nil
	case strings.HasPrefix(data, "@"):
		b, err := os.ReadFile(data[1:])
		if err != nil {
			return nil, fmt.Errorf("read request body: %w", err)
		}
		return b, nil
	default:
		return []byte(data), nil
	}
}

// parseHeaders turns "Name: value" strings into a header map.
func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q, expected \"Name: value\"", h)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}
