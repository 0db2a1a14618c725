// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package invoker runs an invocation through its bootstrap stages:
//
//	pushProperties → validate → prepare → configureLogging → activateLogging →
//	helpOrVersionAndMayExit → preCommands → container → lookup → init →
//	postCommands → settings → execute
//
// Stages run strictly in order on one goroutine. Terminal probing is the
// only asynchronous step; activateLogging waits for it. Any stage error other
// than *ExitError ends the run and is reported once at the outer boundary.
// The Context is always closed and process globals are always restored.
package invoker

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kraklabs/mvnboot/internal/errors"
	"github.com/kraklabs/mvnboot/internal/logging"
	"github.com/kraklabs/mvnboot/internal/ui"
	"github.com/kraklabs/mvnboot/pkg/lookup"
	"github.com/kraklabs/mvnboot/pkg/opt"
	"github.com/kraklabs/mvnboot/pkg/options"
	"github.com/kraklabs/mvnboot/pkg/paths"
	"github.com/kraklabs/mvnboot/pkg/request"
	"github.com/kraklabs/mvnboot/pkg/settings"
	"github.com/kraklabs/mvnboot/pkg/sysprops"
)

// Strategy executes the build once the context is ready.
type Strategy interface {
	Execute(ctx *Context) (int, error)
}

// StageHook observes the pipeline after each successful stage. Returning an
// error fails the invocation like a stage error would.
type StageHook interface {
	AfterStage(ctx *Context, stage string) error
}

// Optional Strategy extensions, run by the stage of the same name.
type (
	PreCommander interface {
		PreCommands(ctx *Context) error
	}
	Initializer interface {
		Init(ctx *Context) error
	}
	PostCommander interface {
		PostCommands(ctx *Context) error
	}
)

// LoggerFactoryFunc builds the logger factory for a handler.
type LoggerFactoryFunc func(h slog.Handler, reg prometheus.Registerer) (logging.Factory, error)

// Invoker runs invocations. It holds no per-invocation state.
type Invoker struct {
	strategy      Strategy
	capsules      CapsuleFactory
	hook          StageHook
	loggerFactory LoggerFactoryFunc
	procs         func() int
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithCapsuleFactory replaces ContainerCapsuleFactory.
func WithCapsuleFactory(f CapsuleFactory) Option {
	return func(i *Invoker) { i.capsules = f }
}

// WithStageHook installs h.
func WithStageHook(h StageHook) Option {
	return func(i *Invoker) { i.hook = h }
}

// WithLoggerFactory replaces the recording logger factory.
func WithLoggerFactory(f LoggerFactoryFunc) Option {
	return func(i *Invoker) { i.loggerFactory = f }
}

// WithProcessors overrides the processor count used for --threads NC.
func WithProcessors(n int) Option {
	return func(i *Invoker) { i.procs = func() int { return n } }
}

// New returns an invoker executing builds with s.
func New(s Strategy, opts ...Option) *Invoker {
	i := &Invoker{
		strategy:      s,
		capsules:      ContainerCapsuleFactory{},
		loggerFactory: recordingFactory,
		procs:         runtime.NumCPU,
	}
	for _, o := range opts {
		o(i)
	}
	return i
}

func recordingFactory(h slog.Handler, reg prometheus.Registerer) (logging.Factory, error) {
	rec, err := logging.NewRecorder(reg)
	if err != nil {
		return nil, err
	}
	return logging.NewRecordingFactory(h, rec), nil
}

type stage struct {
	name string
	run  func(i *Invoker, ctx *Context) error
}

var stages = []stage{
	{"pushProperties", (*Invoker).pushProperties},
	{"validate", (*Invoker).validate},
	{"prepare", (*Invoker).prepare},
	{"configureLogging", (*Invoker).configureLogging},
	{"activateLogging", (*Invoker).activateLogging},
	{"helpOrVersionAndMayExit", (*Invoker).helpOrVersionAndMayExit},
	{"preCommands", (*Invoker).preCommands},
	{"container", (*Invoker).container},
	{"lookup", (*Invoker).lookup},
	{"init", (*Invoker).init},
	{"postCommands", (*Invoker).postCommands},
	{"settings", (*Invoker).settings},
}

// Invoke runs req and returns its exit code. A non-nil error is always an
// *InvokerError; help and version displays return 0 and no error.
func (i *Invoker) Invoke(req *request.Request) (int, error) {
	g := takeGlobals()
	defer g.restore()

	ctx := newContext(req)
	code, err := i.run(ctx)

	if cerr := ctx.Close(); cerr != nil {
		var ie *InvokerError
		if !errors.As(err, &ie) {
			ie = &InvokerError{Code: 1}
			code = 1
		}
		var ce *errors.CloseError
		if errors.As(cerr, &ce) {
			ie.Suppressed = append(ie.Suppressed, ce.Errs...)
		} else {
			ie.Suppressed = append(ie.Suppressed, cerr)
		}
		if ie.Err == nil {
			ctx.Proto.Error(fmt.Sprintf("Failed to release invocation resources: %v", cerr))
		}
		return code, ie
	}
	return code, err
}

func (i *Invoker) run(ctx *Context) (int, error) {
	metrics, err := newStageMetrics(ctx.Registry)
	if err != nil {
		return 1, i.fail(ctx, "metrics", err)
	}

	for _, s := range stages {
		start := time.Now()
		err := s.run(i, ctx)
		metrics.observe(s.name, start, err)
		if err == nil && i.hook != nil {
			err = i.hook.AfterStage(ctx, s.name)
		}
		if err != nil {
			var exit *ExitError
			if errors.As(err, &exit) {
				return exit.Code, nil
			}
			return 1, i.fail(ctx, s.name, err)
		}
	}

	start := time.Now()
	code, err := i.execute(ctx)
	metrics.observe("execute", start, err)
	if err == nil && i.hook != nil {
		err = i.hook.AfterStage(ctx, "execute")
	}
	if err != nil {
		var exit *ExitError
		if errors.As(err, &exit) {
			return exit.Code, nil
		}
		return 1, i.fail(ctx, "execute", err)
	}
	return code, nil
}

// fail logs err once and converts it into an *InvokerError. Every distinct
// cause gets one line. --errors adds the failed stage and the cause types;
// without it a hint follows.
func (i *Invoker) fail(ctx *Context, stage string, err error) error {
	showErrors := ctx.Values.ShowErrors.OrElse(false) || ctx.Values.Verbose.OrElse(false)
	report := func(msg string) {
		if ctx.Logger != nil {
			ctx.Logger.Error(msg)
			return
		}
		ctx.Proto.Error(msg)
	}

	report(errors.Format(err))
	if showErrors {
		report(fmt.Sprintf("Failed stage: %s", stage))
	}
	seen := map[string]bool{err.Error(): true}
	for _, cause := range causes(err)[1:] {
		msg := cause.Error()
		if seen[msg] {
			continue
		}
		seen[msg] = true
		if showErrors {
			report(fmt.Sprintf("Caused by: %T: %s", cause, msg))
		} else {
			report("Caused by: " + msg)
		}
	}
	if !showErrors {
		report("")
		report("To see the full error chain, re-run with the -e switch.")
		report("Re-run with the -X switch to enable verbose output.")
	}
	return &InvokerError{Code: 1, Stage: stage, Err: err}
}

func (i *Invoker) pushProperties(ctx *Context) error {
	for k, v := range ctx.Request.UserProperties() {
		if _, shadowed := sysprops.Get(k); !shadowed {
			sysprops.Set(k, v)
		}
	}
	sysprops.Set(request.MavenHome, ctx.Request.InstallationDirectory())
	return nil
}

func (i *Invoker) validate(ctx *Context) error {
	v := ctx.Values

	ctx.Threads = 1
	if t, ok := v.Threads.Get(); ok {
		n, err := options.ParseThreads(t, i.procs())
		if err != nil {
			return err
		}
		ctx.Threads = n
	}

	if s, ok := v.FailOnSeverity.Get(); ok {
		level, err := options.ParseSeverity(s)
		if err != nil {
			return err
		}
		ctx.FailLevel = &level
	}

	failModes := 0
	for _, set := range []bool{v.FailFast.OrElse(false), v.FailAtEnd.OrElse(false), v.FailNever.OrElse(false)} {
		if set {
			failModes++
		}
	}
	if failModes > 1 {
		return errors.NewInputError(
			"Conflicting failure modes",
			"Only one of --fail-fast, --fail-at-end and --fail-never may be given",
			"Remove all but one of the failure mode switches",
			nil,
		)
	}
	return nil
}

func (i *Invoker) prepare(ctx *Context) error {
	env := ctx.Request.ParserRequest().Env()
	if path := env[EnvMetricsFile]; path != "" {
		reg := ctx.Registry
		ctx.Closeable(CloserFunc(func() error { return writeMetrics(path, reg) }))
	}

	ctx.LogOutput = ctx.Request.Stdout()
	if file, ok := ctx.Values.LogFile.Get(); ok {
		path := paths.Resolve(ctx.Request.Cwd(), file)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644) //nolint:gosec // G302: build log is meant to be readable
		if err != nil {
			return errors.NewConfigError(
				"Cannot open log file",
				fmt.Sprintf("Failed to create %s", path),
				"Check that the directory exists and is writable",
				err,
			)
		}
		ctx.Closeable(f)
		ctx.LogOutput = f
	}
	return nil
}

func (i *Invoker) configureLogging(ctx *Context) error {
	req := ctx.Request
	v := ctx.Values

	raw := v.Color.Or(property(req, request.MavenStyleColor)).Or(property(req, request.StyleColor)).OrElse("auto")
	mode, err := options.ParseColor(raw)
	if err != nil {
		return err
	}
	ctx.ColorMode = mode

	switch mode {
	case options.ColorAlways:
		ctx.Color = true
	case options.ColorNever:
		ctx.Color = false
	default:
		_, noColor := req.ParserRequest().Env()[request.EnvNoColor]
		ctx.Color = !noColor &&
			!v.NonInteractive.OrElse(false) &&
			!v.LogFile.IsPresent() &&
			ui.WriterIsTerminal(req.Stdout())
	}

	ctx.LogLevel = logging.LevelFor(v.Verbose.OrElse(false), v.Quiet.OrElse(false))

	colored := ctx.Color
	terminal := Async(
		func() (*Terminal, error) { return probeTerminal(req.Stdout()) },
		func(*Terminal) { ui.InitColors(!colored) },
	)
	ctx.Terminal = terminal
	// The callback writes process globals; join it before they are restored.
	ctx.Closeable(CloserFunc(func() error {
		_, _ = terminal.Get()
		return nil
	}))
	return nil
}

func (i *Invoker) activateLogging(ctx *Context) error {
	if _, err := ctx.Terminal.Get(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}

	factory, err := i.loggerFactory(logging.NewHandler(ctx.LogOutput, ctx.LogLevel), ctx.Registry)
	if err != nil {
		return err
	}
	ctx.LoggerFactory = factory
	ctx.Logger = factory.Logger("")
	slog.SetDefault(ctx.Logger)

	if ctx.FailLevel != nil {
		rf, ok := factory.(interface{ LevelRecorder() *logging.Recorder })
		if !ok {
			ctx.Logger.Warn(fmt.Sprintf(
				"Expected a level recording logger factory but got %T; the --fail-on-severity option is ignored", factory))
			return nil
		}
		ctx.recorder = rf.LevelRecorder()
		ctx.recorder.SetMaxLevelAllowed(*ctx.FailLevel)
	}
	return nil
}

func (i *Invoker) helpOrVersionAndMayExit(ctx *Context) error {
	out := ctx.Request.Stdout()
	if ctx.Values.Help.OrElse(false) {
		ctx.Request.Options().DisplayHelp(out)
		return &ExitError{Code: 0}
	}
	if ctx.Values.ShowVersionAndExit.OrElse(false) {
		printVersion(ctx)
		return &ExitError{Code: 0}
	}
	return nil
}

func (i *Invoker) preCommands(ctx *Context) error {
	if ctx.Values.ShowVersion.OrElse(false) || ctx.Values.Verbose.OrElse(false) {
		printVersion(ctx)
	}
	if pc, ok := i.strategy.(PreCommander); ok {
		return pc.PreCommands(ctx)
	}
	return nil
}

func (i *Invoker) container(ctx *Context) error {
	capsule, err := i.capsules.NewCapsule(ctx)
	if err != nil {
		return fmt.Errorf("create container: %w", err)
	}
	ctx.Capsule = capsule
	ctx.Closeable(CloserFunc(capsule.Close))
	return nil
}

func (i *Invoker) lookup(ctx *Context) error {
	ctx.Lookup = ctx.Capsule.Lookup()
	b, err := lookup.GetOr[settings.Builder](ctx.Lookup, settings.XMLBuilder{})
	if err != nil {
		return err
	}
	ctx.SettingsBuilder = b
	return nil
}

func (i *Invoker) init(ctx *Context) error {
	if in, ok := i.strategy.(Initializer); ok {
		return in.Init(ctx)
	}
	return nil
}

func (i *Invoker) postCommands(ctx *Context) error {
	log := ctx.Logger
	if ctx.Values.ShowErrors.OrElse(false) {
		log.Info("Error chains are turned on.")
	}
	if ctx.Values.Verbose.OrElse(false) {
		log.Debug("invoker.verbose", "level", ctx.LogLevel.String(), "color", ctx.ColorMode.String())
	}
	if ctx.Threads > 1 {
		log.Debug("invoker.threads", "threads", ctx.Threads)
	}
	if pc, ok := i.strategy.(PostCommander); ok {
		return pc.PostCommands(ctx)
	}
	return nil
}

func (i *Invoker) execute(ctx *Context) (int, error) {
	code, err := i.strategy.Execute(ctx)
	if err != nil {
		return code, err
	}
	if ctx.recorder != nil && ctx.recorder.ThresholdExceeded() {
		ctx.Logger.Error("Build failed due to log statements with a higher severity than allowed. " +
			"Fix the logged issues or remove flag --fail-on-severity (-fos).")
		return 1, nil
	}
	return code, nil
}

func printVersion(ctx *Context) {
	req := ctx.Request
	sys := req.SystemProperties()
	out := req.Stdout()

	version := sys[request.MavenBuildVersion]
	if version == "" {
		version = req.ParserRequest().Command
	}
	_, _ = ui.Bold.Fprintln(out, version)
	_, _ = fmt.Fprintf(out, "%s %s\n", ui.Label("Maven home:"), req.InstallationDirectory())
	_, _ = fmt.Fprintf(out, "%s %s, %s %s\n",
		ui.Label("OS name:"), sys[sysprops.OSName], ui.Label("arch:"), sys[sysprops.OSArch])
}

// property returns key from the user properties, then the system properties.
func property(req *request.Request, key string) opt.Value[string] {
	if v, ok := req.UserProperties()[key]; ok {
		return opt.Of(v)
	}
	if v, ok := req.SystemProperties()[key]; ok {
		return opt.Of(v)
	}
	return opt.None[string]()
}
