package pipeline

import (
	"fmt"

	"github.com/tmppy/tmppyc/internal/desugar"
	"github.com/tmppy/tmppyc/internal/emit"
	"github.com/tmppy/tmppyc/internal/hir"
	"github.com/tmppy/tmppyc/internal/names"
	"github.com/tmppy/tmppyc/internal/normalize"
	"github.com/tmppy/tmppyc/internal/tmplgen"
)

// Compile lowers a front-end module all the way down to C++ source
// text. The input tree is trusted: it was produced by semantic
// analysis and is not re-checked here.
func Compile(module *hir.Module) (string, error) {
	gen := names.NewGenerator()

	mid, err := desugar.Module(module, gen)
	if err != nil {
		return "", fmt.Errorf("desugar: %w", err)
	}
	low, err := normalize.Module(mid)
	if err != nil {
		return "", fmt.Errorf("normalize: %w", err)
	}
	model, err := tmplgen.Module(low, gen)
	if err != nil {
		return "", fmt.Errorf("template generation: %w", err)
	}
	return emit.Module(model), nil
}
