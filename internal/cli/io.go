package cli

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	svzerrors "github.com/matzehuels/svz/pkg/errors"
	"github.com/matzehuels/svz/pkg/pipeline"
)

// readSources reads every named file, or stdin when there are no arguments.
// The argument "-" also stands for stdin and may appear once.
func readSources(stdin io.Reader, args []string) ([]pipeline.Source, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}

	sources := make([]pipeline.Source, 0, len(args))
	readStdin := false
	for _, arg := range args {
		if arg == "-" {
			if readStdin {
				return nil, svzerrors.New(svzerrors.ErrCodeInvalidInput, "stdin given more than once")
			}
			readStdin = true
			data, err := io.ReadAll(stdin)
			if err != nil {
				return nil, svzerrors.Wrap(svzerrors.ErrCodeInvalidInput, err, "read stdin")
			}
			sources = append(sources, pipeline.Source{Name: stdinName, Text: string(data)})
			continue
		}

		data, err := os.ReadFile(arg)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, svzerrors.Wrap(svzerrors.ErrCodeFileNotFound, err, "source file %s", arg)
		case err != nil:
			return nil, svzerrors.Wrap(svzerrors.ErrCodeInvalidInput, err, "read %s", arg)
		}
		sources = append(sources, pipeline.Source{Name: arg, Text: string(data)})
	}
	return sources, nil
}

// isText reports whether format can be written to a terminal.
func isText(format string) bool {
	switch format {
	case pipeline.FormatDOT, pipeline.FormatSVG, pipeline.FormatJSON, pipeline.FormatYAML:
		return true
	}
	return false
}

// basePath derives the base output path. If output is empty, the extension
// of input is stripped; stdin becomes the application name. If output has a
// format extension, that extension is stripped.
func basePath(output, input string) string {
	if output == "" {
		if input == "" || input == stdinName {
			return appName
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := strings.TrimPrefix(filepath.Ext(output), ".")
	if pipeline.ValidFormats[ext] {
		return strings.TrimSuffix(output, "."+ext)
	}
	return output
}

// writeArtifacts writes rendered artifacts and returns the files created.
//
// A single text format without --output goes to stdout. A single format with
// --output is written to exactly that path. Everything else is written next
// to the derived base path as <base>.<format>.
func writeArtifacts(stdout io.Writer, artifacts map[string][]byte, formats []string, output, input string) ([]string, error) {
	if len(formats) == 1 {
		format := formats[0]
		switch {
		case output == "" && isText(format):
			_, err := stdout.Write(artifacts[format])
			return nil, err
		case output != "":
			return []string{output}, writeFile(output, artifacts[format])
		}
	}

	base := basePath(output, input)
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		path := base + "." + format
		if path == input {
			return paths, svzerrors.New(svzerrors.ErrCodeInvalidInput, "output %s would overwrite the input; pass -o", path)
		}
		if err := writeFile(path, artifacts[format]); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return svzerrors.Wrap(svzerrors.ErrCodeInvalidInput, err, "write %s", path)
	}
	return nil
}
