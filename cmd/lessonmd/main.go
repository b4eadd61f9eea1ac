package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rgonek/lessonmd/content"
	"github.com/rgonek/lessonmd/internal/logger"
	"github.com/rgonek/lessonmd/lesson"
	"github.com/rgonek/lessonmd/normalize"
	"github.com/rgonek/lessonmd/render"
	"github.com/rgonek/lessonmd/widget"
)

const (
	presetBalanced = "balanced"
	presetRich     = "rich"
	presetTrusted  = "trusted"
)

func presetConfig(preset string) (render.Config, error) {
	switch strings.ToLower(strings.TrimSpace(preset)) {
	case "", presetBalanced:
		return render.Config{}, nil
	case presetRich:
		return render.Config{
			Highlight:      true,
			HighlightStyle: "github",
		}, nil
	case presetTrusted:
		return render.Config{
			Highlight:      true,
			HighlightStyle: "monokai",
			Sanitize:       render.SanitizeNone,
		}, nil
	default:
		return render.Config{}, fmt.Errorf("unknown preset %q (allowed: balanced, rich, trusted)", preset)
	}
}

// fileConfig is the YAML document accepted by -config.
type fileConfig struct {
	Preset      string              `yaml:"preset"`
	Render      render.Config       `yaml:"render"`
	Widgets     []widget.Definition `yaml:"widgets"`
	WidgetsFile string              `yaml:"widgetsFile"`
	Database    string              `yaml:"database"`
	LogMode     string              `yaml:"logMode"`
}

func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// resolveConfig starts from the preset and overlays non-zero file values,
// then flag values.
func resolveConfig(preset string, file render.Config, highlight bool, headingOffset int, editAction string) (render.Config, error) {
	cfg, err := presetConfig(preset)
	if err != nil {
		return render.Config{}, err
	}

	if file.Highlight {
		cfg.Highlight = true
	}
	if file.HighlightStyle != "" {
		cfg.HighlightStyle = file.HighlightStyle
	}
	if file.Sanitize != "" {
		cfg.Sanitize = file.Sanitize
	}
	if file.HeadingOffset != 0 {
		cfg.HeadingOffset = file.HeadingOffset
	}
	if file.EditAction != "" {
		cfg.EditAction = file.EditAction
	}
	if file.WidgetClass != "" {
		cfg.WidgetClass = file.WidgetClass
	}

	if highlight {
		cfg.Highlight = true
	}
	if headingOffset != 0 {
		cfg.HeadingOffset = headingOffset
	}
	if editAction != "" {
		cfg.EditAction = editAction
	}
	return cfg, nil
}

// buildRegistry returns the builtin widgets plus inline and file definitions.
func buildRegistry(defs []widget.Definition, widgetsFile string) (*widget.Registry, error) {
	reg := widget.Builtin()

	descs, err := widget.DescriptorsFrom(defs)
	if err != nil {
		return nil, err
	}
	if widgetsFile != "" {
		f, err := os.Open(widgetsFile)
		if err != nil {
			return nil, fmt.Errorf("open widgets file: %w", err)
		}
		defer f.Close()
		fromFile, err := widget.LoadDefinitions(f)
		if err != nil {
			return nil, err
		}
		descs = append(descs, fromFile...)
	}

	for _, desc := range descs {
		if err := reg.Register(desc); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

type segmentView struct {
	Kind   string         `json:"kind"`
	Type   string         `json:"type,omitempty"`
	Span   content.Span   `json:"span"`
	Inert  bool           `json:"inert,omitempty"`
	Reason string         `json:"reason,omitempty"`
	Props  map[string]any `json:"props,omitempty"`
	Text   string         `json:"text"`
}

type segmentsOutput struct {
	Segments []segmentView     `json:"segments"`
	Warnings []content.Warning `json:"warnings,omitempty"`
}

func describeSegments(doc content.Document) segmentsOutput {
	out := segmentsOutput{Warnings: doc.Warnings}
	for _, seg := range doc.Segments {
		switch s := seg.(type) {
		case *content.Prose:
			out.Segments = append(out.Segments, segmentView{
				Kind: "prose", Span: s.Span, Inert: s.Inert, Reason: string(s.Reason), Text: s.Text,
			})
		case *content.Widget:
			out.Segments = append(out.Segments, segmentView{
				Kind: "widget", Type: s.Type, Span: s.Span, Props: s.Props, Text: s.Source,
			})
		}
	}
	return out
}

type options struct {
	normalize     bool
	segments      bool
	authoring     bool
	save          bool
	preset        string
	configPath    string
	widgetsFile   string
	database      string
	chapter       string
	title         string
	lessonID      string
	logMode       string
	highlight     bool
	headingOffset int
	editAction    string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("lessonmd", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.BoolVar(&opts.normalize, "normalize", false, "Print the normalized markdown instead of HTML")
	fs.BoolVar(&opts.segments, "segments", false, "Print parsed segments and warnings as JSON")
	fs.BoolVar(&opts.authoring, "authoring", false, "Render the authoring view")
	fs.BoolVar(&opts.save, "save", false, "Normalize the input and save it as a lesson")
	fs.StringVar(&opts.preset, "preset", "", "Preset: balanced|rich|trusted")
	fs.StringVar(&opts.configPath, "config", "", "YAML config file")
	fs.StringVar(&opts.widgetsFile, "widgets", "", "YAML widget definitions file")
	fs.StringVar(&opts.database, "db", "", "SQLite lesson database (in-memory store when empty)")
	fs.StringVar(&opts.chapter, "chapter", "", "Chapter ID for -save")
	fs.StringVar(&opts.title, "title", "", "Lesson title for -save")
	fs.StringVar(&opts.lessonID, "lesson", "", "Render a stored lesson instead of a file")
	fs.StringVar(&opts.logMode, "log-mode", "", "Log mode: dev|prod|quiet")
	fs.BoolVar(&opts.highlight, "highlight", false, "Highlight fenced code")
	fs.IntVar(&opts.headingOffset, "heading-offset", 0, "Shift heading levels (-5..5)")
	fs.StringVar(&opts.editAction, "edit-action", "", "Form action for authoring forms")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: lessonmd [options] <input-file>\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if opts.lessonID == "" && fs.NArg() < 1 {
		fs.Usage()
		return 1
	}

	file, err := loadFileConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid config file: %v\n", err)
		return 1
	}
	if opts.preset == "" {
		opts.preset = file.Preset
	}
	if opts.widgetsFile == "" {
		opts.widgetsFile = file.WidgetsFile
	}
	if opts.database == "" {
		opts.database = file.Database
	}
	if opts.logMode == "" {
		opts.logMode = file.LogMode
	}
	if opts.logMode == "" {
		opts.logMode = "quiet"
	}

	log, err := logger.New(opts.logMode)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid log mode: %v\n", err)
		return 1
	}
	defer log.Sync()

	cfg, err := resolveConfig(opts.preset, file.Render, opts.highlight, opts.headingOffset, opts.editAction)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid preset: %v\n", err)
		return 1
	}

	reg, err := buildRegistry(file.Widgets, opts.widgetsFile)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid widget definitions: %v\n", err)
		return 1
	}

	renderer, err := render.New(reg, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid config: %v\n", err)
		return 1
	}

	ctx := context.Background()
	store, closeStore, err := openStore(ctx, opts.database, log)
	if err != nil {
		fmt.Fprintf(stderr, "Error opening lesson store: %v\n", err)
		return 1
	}
	defer closeStore()

	session := lesson.NewSession(store, reg, renderer, log)
	if opts.lessonID != "" {
		if err := session.Load(ctx, opts.lessonID); err != nil {
			fmt.Fprintf(stderr, "Error loading lesson: %v\n", err)
			return 1
		}
	} else {
		data, err := os.ReadFile(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(stderr, "Error reading file: %v\n", err)
			return 1
		}
		session.Reset(opts.chapter)
		session.SetContent(string(data))
	}

	switch {
	case opts.save:
		session.Import(session.Content())
		session.SetTitle(opts.title)
		saved, err := session.Save(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "Error saving lesson: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, saved.ID)
	case opts.normalize:
		fmt.Fprintln(stdout, normalize.Normalize(session.Content()))
	case opts.segments:
		pretty, err := json.MarshalIndent(describeSegments(session.Document()), "", "  ")
		if err != nil {
			fmt.Fprintf(stderr, "Error formatting segments: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, string(pretty))
	case opts.authoring:
		fmt.Fprint(stdout, session.Authoring().HTML)
	default:
		fmt.Fprint(stdout, session.Preview().HTML)
	}
	return 0
}

func openStore(ctx context.Context, path string, log *logger.Logger) (lesson.Store, func(), error) {
	if path == "" {
		return lesson.NewMemoryStore(), func() {}, nil
	}
	store, err := lesson.OpenSQLite(ctx, path, log)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}
