package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sambeau/quetzal/config"
	qerrors "github.com/sambeau/quetzal/pkg/quetzal/errors"
	"github.com/sambeau/quetzal/pkg/quetzal/quetzal"
	"github.com/sambeau/quetzal/pkg/quetzal/repl"
	"github.com/sambeau/quetzal/pkg/quetzal/watcher"
)

// Version information, set at build time via -ldflags
var (
	Version = "dev"     // -X main.Version=$(git describe --tags --always)
	Commit  = "unknown" // -X main.Commit=$(git rev-parse --short HEAD)
)

func main() {
	ctx := context.Background()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv); err != nil {
		var qerr *qerrors.QuetzalError
		if errors.As(err, &qerr) {
			fmt.Fprintln(os.Stderr, qerr.Error())
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// run is the main entry point, designed for testability (Mat Ryer pattern)
func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) error {
	flags := flag.NewFlagSet("quetzal", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	var (
		configPath  = flags.String("config", "", "Path to config file")
		evalCode    = flags.String("e", "", "Run code given on the command line")
		checkMode   = flags.Bool("comprobar", false, "Check block structure without executing")
		jsonOutput  = flags.Bool("json", false, "Report --comprobar failures as JSON lines")
		watchMode   = flags.Bool("vigilar", false, "Re-run the file whenever it changes")
		showVersion = flags.Bool("version", false, "Show version")
		showHelp    = flags.Bool("ayuda", false, "Show help")
	)
	flags.BoolVar(showHelp, "h", false, "Alias for --ayuda")

	if err := flags.Parse(args); err != nil {
		printUsage(stderr)
		return err
	}

	if *showHelp {
		printUsage(stdout)
		return nil
	}

	if *showVersion {
		fmt.Fprintf(stdout, "quetzal version %s (%s)\n", Version, Commit)
		return nil
	}

	cfg, configFile, err := config.LoadWithPath(*configPath, getenv)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()
	log := logger.Sugar()
	if configFile != "" {
		log.Debugw("loaded config", "path", configFile)
	}

	color, err := quetzal.ParseColorMode(cfg.Console.Color)
	if err != nil {
		return err
	}
	runOpts := []quetzal.Option{
		quetzal.WithConsole(quetzal.WriterConsole(stdout, color)),
		quetzal.WithLogger(log),
		quetzal.WithLanguage(cfg.LanguageTag()),
		quetzal.WithMaxCallDepth(cfg.Interpreter.MaxDepth),
	}

	files := flags.Args()
	switch {
	case *evalCode != "":
		return quetzal.InterpretWith(*evalCode, runOpts...)
	case *checkMode:
		if len(files) == 0 {
			return fmt.Errorf("--comprobar requires at least one file")
		}
		return checkFiles(files, stdout, *jsonOutput)
	case *watchMode:
		if len(files) != 1 {
			return fmt.Errorf("--vigilar requires exactly one file")
		}
		ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return watchFile(ctx, files[0], cfg, stderr, log, runOpts)
	case len(files) > 0:
		return quetzal.InterpretFile(files[0], runOpts...)
	default:
		repl.Start(stdout, repl.Options{
			Version:     Version,
			HistoryFile: cfg.REPL.History,
			Color:       color,
			Logger:      log,
			Language:    cfg.LanguageTag(),
			MaxDepth:    cfg.Interpreter.MaxDepth,
		})
		return nil
	}
}

// newLogger builds the diagnostic logger from the logging section.
// interprete.traza forces debug level so every statement is logged.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.Logging.Format == "json" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	if cfg.Interpreter.Trace {
		level = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	output := cfg.Logging.Output
	if output == "" {
		output = "stderr"
	}
	zcfg.OutputPaths = []string{output}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	return zcfg.Build()
}

// checkFiles verifies each file's block structure and reports every
// failure; the returned error summarises how many failed. With asJSON each
// failure is one JSON object per line and successes are not reported.
func checkFiles(files []string, stdout io.Writer, asJSON bool) error {
	failed := 0
	for _, filename := range files {
		content, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", filename, err)
		}
		if err := quetzal.Check(string(content)); err != nil {
			failed++
			var qerr *qerrors.QuetzalError
			switch {
			case !errors.As(err, &qerr):
				fmt.Fprintf(stdout, "%s: %v\n", filename, err)
			case asJSON:
				data, jerr := qerr.WithFile(filename).ToJSON()
				if jerr != nil {
					return jerr
				}
				fmt.Fprintln(stdout, string(data))
			default:
				fmt.Fprintln(stdout, qerr.WithFile(filename).PrettyString())
			}
			continue
		}
		if !asJSON {
			fmt.Fprintf(stdout, "%s: correcto\n", filename)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed the check", failed, len(files))
	}
	return nil
}

// watchFile runs filename now and again after every change to it or to the
// extra paths listed under vigilar.rutas, until ctx is cancelled. Program
// errors are reported but never stop the loop.
func watchFile(ctx context.Context, filename string, cfg *config.Config, stderr io.Writer, log *zap.SugaredLogger, opts []quetzal.Option) error {
	runOnce := func() {
		if err := quetzal.InterpretFile(filename, opts...); err != nil {
			var qerr *qerrors.QuetzalError
			if errors.As(err, &qerr) {
				fmt.Fprintln(stderr, qerr.PrettyString())
			} else {
				fmt.Fprintf(stderr, "error: %v\n", err)
			}
		}
	}

	paths := append([]string{filename}, cfg.Watch.Extra...)
	w, err := watcher.New(paths, func(path string) {
		fmt.Fprintf(stderr, "[vigilar] %s cambió, ejecutando de nuevo\n", path)
		runOnce()
	}, watcher.WithDebounce(cfg.Watch.Debounce), watcher.WithLogger(log))
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	runOnce()
	fmt.Fprintf(stderr, "[vigilar] esperando cambios en %s (Ctrl+C para salir)\n", filename)
	return w.Run(ctx)
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `quetzal - intérprete del lenguaje Quetzal

Uso:
  quetzal                          Inicia la consola interactiva
  quetzal archivo.qz               Ejecuta un programa
  quetzal -e "código"              Ejecuta código de la línea de órdenes
  quetzal --comprobar archivo...   Comprueba la estructura sin ejecutar
  quetzal --vigilar archivo.qz     Ejecuta de nuevo al guardar cambios

Opciones:
  --config RUTA      Archivo de configuración (por defecto: autodetectar)
  --json             Con --comprobar, informa de los errores en JSON
  --version          Muestra la versión
  -h, --ayuda        Muestra esta ayuda

Configuración:
  1. --config
  2. variable de entorno QUETZAL_CONFIG
  3. ./quetzal.yaml
  4. ~/.config/quetzal/quetzal.yaml
`)
}
