package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/DrSkyle/platform-cli/pkg/config"
	awsengine "github.com/DrSkyle/platform-cli/pkg/engine/aws"
	"github.com/DrSkyle/platform-cli/pkg/engine/policy"
	"github.com/DrSkyle/platform-cli/pkg/ownership"
	"github.com/DrSkyle/platform-cli/pkg/telemetry"
	"github.com/DrSkyle/platform-cli/pkg/version"
)

// Clients bundles the SDK clients the managers talk to. Tests inject mocks through
// WithClients; otherwise New builds them from an AWS session.
type Clients struct {
	EC2     awsengine.EC2API
	S3      awsengine.S3API
	Route53 awsengine.Route53API
}

// Engine is the runtime core of one invocation.
type Engine struct {
	Compute *awsengine.ComputeManager
	Storage *awsengine.StorageManager
	DNS     *awsengine.DNSManager

	Logger *slog.Logger
	Tracer trace.Tracer
	AWS    *awsengine.Client

	config    config.Config
	clients   *Clients
	confirm   awsengine.Confirmer
	logOutput io.Writer
	shutdown  func(context.Context) error

	ownerOnce sync.Once
	ownerID   string
	ownerErr  error
}

// Option defines a functional configuration override.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.Logger = l
	}
}

// WithLogOutput sets where the default logger writes. Defaults to stderr.
func WithLogOutput(w io.Writer) Option {
	return func(e *Engine) {
		e.logOutput = w
	}
}

// WithConfirmer sets the prompt used before public bucket creation.
func WithConfirmer(c awsengine.Confirmer) Option {
	return func(e *Engine) {
		e.confirm = c
	}
}

// WithClients skips session setup and uses the given SDK clients.
func WithClients(c Clients) Option {
	return func(e *Engine) {
		e.clients = &c
	}
}

// New wires logger, telemetry, session, guard rules and the three managers.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*Engine, error) {
	e := &Engine{
		config:    cfg,
		Tracer:    telemetry.Tracer("platform-cli/engine"),
		logOutput: os.Stderr,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.Logger == nil {
		e.Logger = NewLogger(e.logOutput, cfg.Verbose, cfg.JSONLogs)
	}
	slog.SetDefault(e.Logger)

	if !cfg.SkipTelemetry {
		shutdown, err := telemetry.Init(ctx, version.AppName, version.Current, cfg.OtelEndpoint)
		if err != nil {
			e.Logger.Warn("Telemetry failed", "error", err)
		} else {
			e.shutdown = shutdown
		}
	}

	guard, err := loadGuard(cfg.RulesFile, e.Logger)
	if err != nil {
		return nil, err
	}

	if e.clients == nil {
		client, err := awsengine.NewClient(ctx, awsengine.SessionOptions{
			Region:   cfg.Region,
			Profile:  cfg.Profile,
			Endpoint: cfg.Endpoint,
			Verbose:  cfg.Verbose,
			Logger:   e.Logger,
		})
		if err != nil {
			return nil, err
		}
		e.AWS = client
		e.clients = &Clients{EC2: client.EC2(), S3: client.S3(), Route53: client.Route53()}
	}

	region := cfg.Region
	if e.AWS != nil {
		region = e.AWS.Region()
	}

	e.Compute = awsengine.NewComputeManager(e.clients.EC2, cfg.Compute, guard, e.resolveOwner, e.Logger)
	e.Storage = awsengine.NewStorageManager(e.clients.S3, region, guard, e.resolveOwner, e.confirm, e.Logger)
	e.DNS = awsengine.NewDNSManager(e.clients.Route53, guard, e.resolveOwner, e.Logger)

	e.Logger.Debug("Engine ready", "region", region, "rules", cfg.RulesFile, "version", version.Current)
	return e, nil
}

func loadGuard(path string, logger *slog.Logger) (*policy.Guard, error) {
	if path == "" {
		return nil, nil
	}
	rules, err := policy.LoadRules(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Compiling rules", "count", len(rules))
	guard, err := policy.NewGuard(rules, logger)
	if err != nil {
		return nil, fmt.Errorf("invalid rules file %s: %w", path, err)
	}
	return guard, nil
}

// resolveOwner implements ownership.OwnerFunc. The configured owner wins; otherwise the
// STS caller name is looked up once.
func (e *Engine) resolveOwner(ctx context.Context) (string, error) {
	if e.config.Owner != "" {
		return e.config.Owner, nil
	}
	e.ownerOnce.Do(func() {
		if e.AWS == nil {
			e.ownerID = ownership.UnknownOwner
			return
		}
		e.ownerID, e.ownerErr = e.AWS.CallerName(ctx)
		if e.ownerErr == nil {
			e.Logger.Debug("Owner resolved from caller identity", "owner", e.ownerID)
		}
	})
	return e.ownerID, e.ownerErr
}

// Run executes one workflow inside a span. A panic is recorded and returned as an error.
func (e *Engine) Run(ctx context.Context, name string, fn func(ctx context.Context) error) (err error) {
	ctx, span := e.Tracer.Start(ctx, "Command."+name)
	defer span.End()
	defer e.recoverPanic(ctx, &err)

	err = fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// Close flushes telemetry.
func (e *Engine) Close(ctx context.Context) error {
	if e.shutdown == nil {
		return nil
	}
	return e.shutdown(ctx)
}

// recoverPanic handles failures.
func (e *Engine) recoverPanic(ctx context.Context, errp *error) {
	if r := recover(); r != nil {
		_, span := e.Tracer.Start(ctx, "CriticalPanic")

		stack := debug.Stack()
		span.RecordError(fmt.Errorf("%v", r), trace.WithStackTrace(true))
		span.SetStatus(codes.Error, "CRITICAL FAILURE")
		span.SetAttributes(
			attribute.String("crash.stack", string(stack)),
			attribute.String("crash.reason", fmt.Sprintf("%v", r)),
		)
		span.End()

		e.Logger.Error("CRITICAL FAILURE", "error", r, "stack", string(stack))
		*errp = fmt.Errorf("internal error: %v", r)
	}
}

// NewLogger builds the process logger: text or JSON on w, debug level when verbose.
func NewLogger(w io.Writer, verbose, jsonLogs bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: redactSensitiveData,
	}
	if jsonLogs {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// redactSensitiveData scrubs sensitive keys from logs.
func redactSensitiveData(groups []string, a slog.Attr) slog.Attr {
	sensitiveKeys := map[string]bool{
		"account": true, "password": true, "access_key": true, "token": true,
		"secret": true, "secret_key": true, "session_token": true,
		"private_key": true, "credential": true, "signature": true,
	}

	if sensitiveKeys[a.Key] {
		return slog.Attr{
			Key:   a.Key,
			Value: slog.StringValue("[REDACTED]"),
		}
	}
	return a
}
