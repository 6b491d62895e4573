// Command tag rewrites ID3v2 (MP3) and iTunes-style (M4A) metadata tags.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/audiotag/tag/internal/config"
	"github.com/audiotag/tag/internal/dump"
	"github.com/audiotag/tag/internal/observability"
	"github.com/audiotag/tag/internal/pictype"
	"github.com/audiotag/tag/internal/pipeline"
	"github.com/audiotag/tag/internal/tagerr"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run implements the CLI so tests can drive it without touching os.Exit.
func run(args []string, stdout, stderr *os.File) int {
	fs := flag.NewFlagSet("tag", flag.ContinueOnError)
	fs.SetOutput(stderr)

	title := fs.String("title", "", "set title")
	artist := fs.String("artist", "", "set artist (MP3: TPE1+TPE2; M4A: ©ART+aART)")
	track := fs.String("track", "", "set track number")
	album := fs.String("album", "", "set album")
	sortAlbum := fs.String("sort-album", "", "set sort-order album")
	genre := fs.String("genre", "", "set genre")
	recordDate := fs.String("record-date", "", "set record date")
	comment := fs.String("comment", "", "replace all comments with this one")
	combineComments := fs.Bool("combine_comments", false, "merge duplicate comments by text (MP3 only)")
	pictureFlags := multiFlag{}
	fs.Var(&pictureFlags, "picture", "TYPE:MIME:DESCRIPTION:PATH, attach cover art (repeatable, MP3 only)")
	remove := fs.String("remove", "", "semicolon-separated 4-byte frame IDs to drop (MP3 only)")
	output := fs.String("output", "", "destination file or directory (required)")
	configFile := fs.String("config", "", "YAML file of flag defaults")
	verbose := fs.Bool("verbose", false, "raise observability level")
	debug := fs.Bool("debug", false, "raise observability level, include step detail")
	noColor := fs.Bool("no-color", false, "disable colored output")
	dumpMode := fs.Bool("dump", false, "print the tag contents of PATH and exit, ignoring all mutation flags")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg := config.LoadConfigOrDefault(*configFile)
	applyConfigDefaults(fs, cfg, combineComments, debug, verbose)

	paths := fs.Args()
	if len(paths) != 1 {
		fmt.Fprintln(stderr, "usage: tag <PATH> --output <OUTPUT> [flags...]")
		return 1
	}
	target := paths[0]

	useColor := !*noColor && term.IsTerminal(int(stderr.Fd()))
	color.NoColor = !useColor

	level := observability.ObservabilityOff
	if *verbose {
		level = observability.ObservabilityMetrics
	}
	if *debug {
		level = observability.ObservabilityDebug
	}
	obs := observability.NewStandardObserver(level, stderr)

	if *dumpMode {
		if err := dump.File(stdout, target); err != nil {
			printFailure(stderr, target, err, useColor)
			return 1
		}
		return 0
	}

	req, err := buildRequest(title, artist, track, album, sortAlbum, genre, recordDate, comment, *combineComments, pictureFlags, *remove)
	if err != nil {
		printFailure(stderr, target, err, useColor)
		return 1
	}

	if *output == "" {
		fmt.Fprintln(stderr, "--output is required")
		return 1
	}

	info, err := os.Stat(target)
	if err != nil {
		printFailure(stderr, target, err, useColor)
		return 1
	}

	if info.IsDir() {
		return processDirectory(context.Background(), obs, target, *output, req, stderr, useColor)
	}
	return processSingleFile(context.Background(), obs, target, *output, req, stderr, useColor)
}

func processSingleFile(ctx context.Context, obs *observability.StandardObserver, input, output string, req pipeline.Request, stderr *os.File, useColor bool) int {
	outPath := pipeline.ResolveOutputPath(input, output)
	if err := pipeline.ProcessFile(ctx, obs, input, outPath, req); err != nil {
		printFailure(stderr, input, err, useColor)
		return 1
	}
	return 0
}

func processDirectory(ctx context.Context, obs *observability.StandardObserver, dir, output string, req pipeline.Request, stderr *os.File, useColor bool) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		// Directory-open failure is a documented quirk, exit 0.
		return 0
	}

	if info, err := os.Stat(output); err != nil || !info.IsDir() {
		printFailure(stderr, output, tagerr.New("", tagerr.KindArgument, "--output must name an existing directory when PATH is a directory"), useColor)
		return 1
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		input := filepath.Join(dir, name)
		outPath := pipeline.ResolveOutputPath(input, output)
		fmt.Fprintln(stderr, name)
		if err := pipeline.ProcessFile(ctx, obs, input, outPath, req); err != nil {
			printFailure(stderr, input, err, useColor)
			return 1
		}
	}
	return 0
}

func printFailure(stderr *os.File, path string, err error, useColor bool) {
	msg := fmt.Sprintf("%s: %v", path, err)
	if useColor {
		color.New(color.FgRed).Fprintln(stderr, msg)
		return
	}
	fmt.Fprintln(stderr, msg)
}

// applyConfigDefaults fills in flag values the user left at their zero
// value from cfg: a flag the user actually
// passed always wins over the config file.
func applyConfigDefaults(fs *flag.FlagSet, cfg *config.Config, combineComments, debug, verbose *bool) {
	passed := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { passed[f.Name] = true })

	if !passed["combine_comments"] {
		*combineComments = cfg.Defaults.CombineComments
	}
	if !passed["debug"] {
		*debug = cfg.Defaults.Debug
	}
	if !passed["verbose"] {
		*verbose = cfg.Defaults.Verbose
	}
}

func buildRequest(title, artist, track, album, sortAlbum, genre, recordDate, comment *string, combineComments bool, pics multiFlag, remove string) (pipeline.Request, error) {
	req := pipeline.Request{
		Title:           optionalString(title),
		Artist:          optionalString(artist),
		Track:           optionalString(track),
		Album:           optionalString(album),
		SortAlbum:       optionalString(sortAlbum),
		Genre:           optionalString(genre),
		RecordDate:      optionalString(recordDate),
		Comment:         optionalString(comment),
		CombineComments: combineComments,
	}

	if remove != "" {
		req.Remove = strings.Split(remove, ";")
	}

	for _, spec := range pics {
		pic, err := parsePictureFlag(spec)
		if err != nil {
			return pipeline.Request{}, err
		}
		req.Pictures = append(req.Pictures, pic)
	}

	return req, nil
}

func optionalString(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// parsePictureFlag parses "TYPE:MIME:DESCRIPTION:PATH".
func parsePictureFlag(spec string) (pipeline.Picture, error) {
	parts := strings.SplitN(spec, ":", 4)
	if len(parts) != 4 {
		return pipeline.Picture{}, tagerr.New("", tagerr.KindArgument, "--picture requires TYPE:MIME:DESCRIPTION:PATH, got "+spec)
	}
	typeByte, err := pictype.Parse(parts[0])
	if err != nil {
		return pipeline.Picture{}, tagerr.Wrap("", tagerr.KindArgument, "--picture type", err)
	}
	return pipeline.Picture{Type: typeByte, MIME: parts[1], Description: parts[2], Path: parts[3]}, nil
}

// multiFlag collects repeated --picture occurrences.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}
