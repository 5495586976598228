package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/carlmjohnson/versioninfo"
	"github.com/mcncl/jsonexport/internal/config"
	"github.com/mcncl/jsonexport/internal/errors"
	"github.com/mcncl/jsonexport/internal/export"
	"github.com/mcncl/jsonexport/internal/logger"
	"github.com/mcncl/jsonexport/internal/models"
	"github.com/mcncl/jsonexport/internal/parser"
	"github.com/mcncl/jsonexport/internal/pipeline"
	"github.com/mcncl/jsonexport/internal/preview"
	"github.com/mcncl/jsonexport/internal/profile"
	"github.com/mcncl/jsonexport/internal/settings"
	"github.com/mcncl/jsonexport/internal/watcher"
	"github.com/pterm/pterm"
	"github.com/spf13/afero"
)

// CLI defines the command-line interface
var CLI struct {
	Input          string   `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Output         string   `help:"Directory to write one file per class into. If not specified, writes to stdout." short:"o" type:"path"`
	Language       string   `help:"Target language profile (display or short name)." short:"l"`
	RootName       string   `help:"Name for the root class." short:"r"`
	Prefix         string   `help:"Prefix added to every class name."`
	Parent         string   `help:"Parent class for every class, when the language supports it."`
	FirstLine      string   `help:"First-line statement such as a package name, when the language supports it."`
	NoConstructors bool     `help:"Leave constructors out of every class."`
	NoUtilities    bool     `help:"Leave utility methods out of every class."`
	Singularize    bool     `help:"Singularize class names derived from array fields."`
	NoFormat       bool     `help:"Skip the gofmt pass for Go-style languages."`
	Rename         []string `help:"Rename a generated class, as Old=New. May be repeated." short:"R"`
	Tree           bool     `help:"Print the class tree to stderr." short:"t"`
	ListLanguages  bool     `help:"List the available languages and exit." short:"L"`
	ProfilesDir    string   `help:"Directory of extra language profiles (*.json)." type:"path"`
	Config         string   `help:"Path to config file. If not specified, searches for .jsonexport.yml in current and parent directories." short:"c" type:"path"`
	Watch          bool     `help:"Regenerate whenever the input file changes." short:"w"`
	Debug          bool     `help:"Enable debug logging." short:"d"`
	JSONLogs       bool     `help:"Write logs as JSON."`
	Version        bool     `help:"Show version information." short:"v"`
	Interactive    bool     `help:"Run in interactive mode, allowing direct JSON input with Ctrl+D to process." short:"I"`
}

// Context holds the runtime context
type Context struct {
	Debug    bool
	Config   *config.Config
	Fs       afero.Fs
	Settings *settings.Store
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
}

func main() {
	parser := kong.Must(&CLI,
		kong.Name("jsonexport"),
		kong.Description("Generate model classes for many languages from a sample JSON document"),
		kong.UsageOnError(),
	)

	if len(os.Args) == 1 {
		CLI.Interactive = true
	}

	if _, err := parser.Parse(os.Args[1:]); err != nil {
		// kong.UsageOnError has already printed usage
		os.Exit(1)
	}

	if CLI.Version {
		fmt.Printf("jsonexport version %s\n", versioninfo.Short())
		return
	}

	fs := afero.NewOsFs()
	if err := config.LoadEnvFiles(fs); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}

	cfg, err := loadConfiguration(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}

	if err := logger.Initialize(CLI.Debug || cfg.Dev.Debug, CLI.JSONLogs || cfg.Dev.JSONLogs); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Cleanup()

	ctx := &Context{
		Debug:    CLI.Debug || cfg.Dev.Debug,
		Config:   cfg,
		Fs:       fs,
		Settings: defaultSettings(fs),
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: jsonexport --help\n")
		logger.Cleanup()
		os.Exit(1)
	}
}

// loadConfiguration loads the config file (explicit or discovered), applies
// environment overrides and then CLI overrides.
func loadConfiguration(fs afero.Fs) (*config.Config, error) {
	cfg := config.NewConfig()

	configPath := CLI.Config
	if configPath == "" {
		if wd, err := os.Getwd(); err == nil {
			configPath = config.FindConfigFile(fs, wd)
		}
	}
	if configPath != "" {
		loaded, err := config.LoadConfig(fs, configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cfg.ApplyEnv(os.LookupEnv)
	applyFlags(cfg)
	return cfg, nil
}

// applyFlags copies explicitly given CLI flags over cfg.
func applyFlags(cfg *config.Config) {
	if CLI.Language != "" {
		cfg.Language = CLI.Language
	}
	if CLI.RootName != "" {
		cfg.RootName = CLI.RootName
	}
	if CLI.ProfilesDir != "" {
		cfg.ProfilesDir = CLI.ProfilesDir
	}
	if CLI.Prefix != "" {
		cfg.Generation.ClassPrefix = CLI.Prefix
	}
	if CLI.Parent != "" {
		cfg.Generation.ParentClassName = CLI.Parent
	}
	if CLI.FirstLine != "" {
		cfg.Generation.FirstLineStatement = CLI.FirstLine
	}
	if CLI.NoConstructors {
		cfg.Generation.IncludeConstructors = false
	}
	if CLI.NoUtilities {
		cfg.Generation.IncludeUtilities = false
	}
	if CLI.Singularize {
		cfg.Naming.SingularizeArrayClasses = true
	}
	if CLI.NoFormat {
		cfg.Output.Format = false
	}
	if CLI.Output != "" {
		cfg.Output.Directory = CLI.Output
	}
}

func defaultSettings(fs afero.Fs) *settings.Store {
	path, err := settings.DefaultPath()
	if err != nil {
		logger.Logger.Warnw("Language selection will not be remembered", "error", err)
		return nil
	}
	return settings.NewStore(fs, path)
}

// run executes the main program logic
func run(ctx *Context) error {
	cfg := ctx.Config
	if cfg == nil {
		cfg = config.NewConfig()
	}

	// 1. Load language profiles
	store, err := loadProfiles(ctx.Fs, cfg.ProfilesDir)
	if err != nil {
		return err
	}

	if CLI.ListLanguages {
		for _, name := range store.Names() {
			fmt.Fprintln(ctx.Stdout, name)
		}
		return nil
	}

	// 2. Pick the language
	prof, err := selectProfile(ctx, store, cfg.Language)
	if err != nil {
		return err
	}

	renames, err := collectRenames(cfg)
	if err != nil {
		return err
	}

	var opts []pipeline.Option
	if !cfg.Output.Format {
		opts = append(opts, pipeline.WithoutGofmt())
	}
	p := pipeline.New(opts...)

	generate := func(jsonText string) error {
		// 3. Generate classes
		if _, err := p.Generate(jsonText, cfg.RootName, prof, cfg.GenerationOptions()); err != nil {
			return err
		}

		// 4. Apply renames
		for _, r := range renames {
			if _, err := p.ApplyRename(r.From, r.To); err != nil {
				return err
			}
		}

		if CLI.Tree {
			fmt.Fprint(ctx.Stderr, preview.Tree(p.Registry()))
		}

		// 5. Output the result
		return writeOutput(ctx, p.Artifacts(), cfg.Output.Directory)
	}

	if CLI.Watch {
		return watch(ctx, generate)
	}

	jsonText, err := readInput(ctx)
	if err != nil {
		return err
	}
	return generate(jsonText)
}

func loadProfiles(fs afero.Fs, dir string) (*profile.Store, error) {
	store, err := profile.LoadBuiltin()
	if err != nil {
		return nil, err
	}
	if dir != "" {
		if _, err := store.LoadDir(fs, dir); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// selectProfile resolves the requested language, falling back to the
// remembered one. An explicit choice is remembered for the next run.
func selectProfile(ctx *Context, store *profile.Store, requested string) (*profile.Profile, error) {
	if requested == "" {
		stored := ""
		if ctx.Settings != nil {
			stored = ctx.Settings.SelectedLanguage()
		}
		return store.Get(settings.ChooseLanguage(stored, store.Names()))
	}

	prof, err := store.Get(requested)
	if err != nil {
		return nil, err
	}
	if ctx.Settings != nil {
		if err := ctx.Settings.SetSelectedLanguage(prof.Name()); err != nil {
			logger.Logger.Warnw("Failed to remember language", "language", prof.Name(), "error", err)
		}
	}
	return prof, nil
}

func collectRenames(cfg *config.Config) ([]config.Rename, error) {
	renames := cfg.Renames()
	for _, arg := range CLI.Rename {
		r, err := config.ParseRename(arg)
		if err != nil {
			return nil, err
		}
		renames = append(renames, r)
	}
	return renames, nil
}

// watch regenerates on every change to the input file until interrupted.
func watch(ctx *Context, generate func(string) error) error {
	if CLI.Input == "" {
		return errors.NewInputError("--watch needs an input file", errors.ErrNoInput)
	}

	regenerate := func() error {
		jsonText, err := parser.ReadFile(ctx.Fs, CLI.Input)
		if err == nil {
			err = generate(jsonText)
		}
		if err != nil {
			pterm.Error.WithWriter(ctx.Stderr).Println(errors.UserFriendlyError(err))
			return err
		}
		return nil
	}

	w, err := watcher.New(CLI.Input, watcher.DefaultDebounce)
	if err != nil {
		return errors.NewInputError(fmt.Sprintf("cannot watch '%s'", CLI.Input), err)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = regenerate()
	pterm.Info.WithWriter(ctx.Stderr).Printf("Watching %s for changes (Ctrl+C to stop)\n", CLI.Input)
	return w.Run(sigCtx, regenerate)
}

// readInput reads JSON from file or stdin
func readInput(ctx *Context) (string, error) {
	if CLI.Input != "" {
		return parser.ReadFile(ctx.Fs, CLI.Input)
	}

	if f, ok := ctx.Stdin.(*os.File); ok {
		stdinInfo, err := f.Stat()
		if err != nil {
			return "", errors.NewInputError("failed to access stdin", err)
		}

		if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
			if CLI.Interactive {
				return readInteractiveInput(ctx)
			}
			return "", errors.NewInputError("no input provided", errors.ErrNoInput)
		}
	}

	jsonData, err := io.ReadAll(ctx.Stdin)
	if err != nil {
		return "", errors.NewInputError("failed to read from stdin", err)
	}
	return string(jsonData), nil
}

// writeOutput exports artifacts into dir, or prints them to stdout when dir
// is empty.
func writeOutput(ctx *Context, artifacts []models.Artifact, dir string) error {
	if dir != "" {
		paths, err := export.New(ctx.Fs).Export(artifacts, dir)
		if err != nil {
			return err
		}
		pterm.Success.WithWriter(ctx.Stderr).Printf("Wrote %d files to %s\n", len(paths), dir)
		return nil
	}

	if len(artifacts) == 0 {
		return errors.NewOutputError("nothing to print", errors.ErrNoArtifacts)
	}

	var b strings.Builder
	for i, a := range artifacts {
		if len(artifacts) > 1 {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "==> %s <==\n", a.FileName())
		}
		b.WriteString(a.Text)
	}
	if _, err := io.WriteString(ctx.Stdout, b.String()); err != nil {
		return errors.NewOutputError("failed to write to stdout", errors.Mark(err, errors.ErrWriteFailure))
	}
	return nil
}

// readInteractiveInput lets users paste JSON and signal completion with
// Ctrl+D (EOF)
func readInteractiveInput(ctx *Context) (string, error) {
	fmt.Fprintln(ctx.Stderr, "jsonexport Interactive Mode")
	fmt.Fprintln(ctx.Stderr, "Paste your JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(ctx.Stdin)
	var jsonBuilder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		jsonBuilder.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.NewInputError("error reading input", err)
		}
	}

	fmt.Fprintln(ctx.Stderr, "\nProcessing JSON...")
	return jsonBuilder.String(), nil
}
