package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tmppy/tmppyc/internal/loader"
	"github.com/tmppy/tmppyc/internal/pipeline"
	"github.com/tmppy/tmppyc/internal/store"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
	Cache  string // compile cache database path
}

// CompileResult is the success payload of the compile command.
type CompileResult struct {
	Module string `json:"module"`
	Output string `json:"output,omitempty"` // output file path, when written to a file
	Cached bool   `json:"cached"`           // true when served from the cache
	Text   string `json:"text,omitempty"`   // emitted C++, when printed to stdout
}

// String renders the text-mode output: the emitted C++ itself, or the
// destination path when the result went to a file.
func (r CompileResult) String() string {
	if r.Output != "" {
		return fmt.Sprintf("wrote %s", r.Output)
	}
	return r.Text
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <module.cue>",
		Short: "Compile a CUE module to C++ template code",
		Long: `Compile a declarative CUE module of typed metafunctions into a C++
translation unit of template metaprogramming code.

With --cache, compiles are memoized in a SQLite database keyed by the
hash of the module source.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().StringVar(&opts.Cache, "cache", "", "compile cache database path")

	return cmd
}

func runCompile(opts *CompileOptions, modulePath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	source, err := os.ReadFile(modulePath)
	if err != nil {
		return failCompile(formatter, ErrCodeNotFound, fmt.Sprintf("reading %s: %v", modulePath, err))
	}

	var cache *store.Store
	if opts.Cache != "" {
		cache, err = store.Open(opts.Cache)
		if err != nil {
			return failCompile(formatter, ErrCodeCacheFailed, fmt.Sprintf("opening cache: %v", err))
		}
		defer cache.Close()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	key := store.Key(source)
	output, cached, err := compileOrLookup(ctx, formatter, cache, key, modulePath)
	if err != nil {
		return err
	}

	result := CompileResult{Module: modulePath, Cached: cached}
	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(output), 0o644); err != nil {
			return failCompile(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing %s: %v", opts.Output, err))
		}
		result.Output = opts.Output
	} else {
		result.Text = output
	}

	return formatter.Success(result)
}

func compileOrLookup(ctx context.Context, formatter *OutputFormatter, cache *store.Store, key, modulePath string) (string, bool, error) {
	if cache != nil {
		cached, ok, err := cache.Get(ctx, key)
		if err != nil {
			return "", false, failCompile(formatter, ErrCodeCacheFailed, err.Error())
		}
		if ok {
			formatter.VerboseLog("cache hit for %s (%s)", modulePath, key[:12])
			return cached, true, nil
		}
		formatter.VerboseLog("cache miss for %s (%s)", modulePath, key[:12])
	}

	module, err := loader.LoadFile(modulePath)
	if err != nil {
		return "", false, failCompile(formatter, ErrCodeLoadFailed, err.Error())
	}
	formatter.VerboseLog("loaded %d type(s), %d function(s)", len(module.CustomTypes), len(module.Functions))

	output, err := pipeline.Compile(module)
	if err != nil {
		return "", false, failCompile(formatter, ErrCodeCompileFailed, err.Error())
	}

	if cache != nil {
		if err := cache.Put(ctx, key, output); err != nil {
			return "", false, failCompile(formatter, ErrCodeCacheFailed, err.Error())
		}
	}
	return output, false, nil
}

// failCompile prints the error in the configured format and returns a
// non-nil error so the command exits non-zero.
func failCompile(formatter *OutputFormatter, code, message string) error {
	if err := formatter.Error(code, message); err != nil {
		return err
	}
	return fmt.Errorf("[%s] %s", code, message)
}
