package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/audiotag/tag/internal/observability"
	"github.com/audiotag/tag/internal/tagerr"
)

// ProcessFile reads the file at inputPath, applies req, and writes the
// result to outputPath (which may equal inputPath). The codec is chosen
// by inputPath's extension: .mp3 dispatches to the ID3v2
// pipeline, .m4a/.mp4/.m4b to the MP4 pipeline. ctx is checked once before
// the (synchronous, in-memory) mutation begins, matching the rest of the
// codebase's convention of threading a context through blocking operations
// without it ever being cancellable mid-mutation.
func ProcessFile(ctx context.Context, obs *observability.StandardObserver, inputPath, outputPath string, req Request) (retErr error) {
	done := obs.StartTiming("pipeline", "process_file", inputPath)
	defer func() {
		meta := map[string]interface{}{}
		if retErr != nil {
			meta["error"] = retErr.Error()
		}
		done(retErr == nil, meta)
	}()

	if err := ctx.Err(); err != nil {
		return tagerr.Wrap(inputPath, tagerr.KindIO, "context canceled before processing", err)
	}

	// step is a no-op unless obs is running at debug level, in which case it
	// mirrors StartTiming's begin/end shape at per-step granularity.
	step := func(name string) func(success bool, detail string) {
		if dbg := obs.DebugObserver; dbg != nil {
			return dbg.StartStep("pipeline", name, inputPath)
		}
		return func(bool, string) {}
	}

	doneRead := step("read_input")
	data, err := os.ReadFile(inputPath)
	if err != nil {
		doneRead(false, err.Error())
		return tagerr.Wrap(inputPath, tagerr.KindIO, "read input file", err)
	}
	doneRead(true, fmt.Sprintf("%d bytes", len(data)))

	doneMutate := step("mutate")
	var out []byte
	switch strings.ToLower(filepath.Ext(inputPath)) {
	case ".mp3":
		out, err = mutateMP3(inputPath, data, req)
	case ".m4a", ".mp4", ".m4b":
		out, err = mutateM4A(inputPath, data, req)
	default:
		err = tagerr.New(inputPath, tagerr.KindArgument, "unrecognized file extension "+filepath.Ext(inputPath))
	}
	if err != nil {
		doneMutate(false, err.Error())
		return err
	}
	doneMutate(true, fmt.Sprintf("%d bytes", len(out)))

	doneWrite := step("write_output")
	info, statErr := os.Stat(inputPath)
	mode := os.FileMode(0o644)
	if statErr == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(outputPath, out, mode); err != nil {
		doneWrite(false, err.Error())
		return tagerr.Wrap(outputPath, tagerr.KindIO, "write output file", err)
	}
	doneWrite(true, outputPath)
	return nil
}

// ResolveOutputPath implements the directory-output semantics:
// when output names an existing directory, the actual output path is
// filepath.Join(output, filepath.Base(input)); otherwise output is used
// verbatim (including the "no --output given" case, where output ==
// input).
func ResolveOutputPath(input, output string) string {
	if output == "" {
		return input
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, filepath.Base(input))
	}
	return output
}
