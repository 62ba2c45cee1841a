package catalog

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ioschema/pkg/errors"
)

// Gateway is read-only access to the module catalog.
//
// Lookup reports found=false, with a nil error, for identifiers that are not
// in the catalog. Glyph returns an empty slice when the module has no
// overview image.
type Gateway interface {
	Lookup(ctx context.Context, id string) (ModuleSpec, bool, error)
	Glyph(ctx context.Context, id string) ([]byte, error)
	All(ctx context.Context) ([]ModuleSpec, error)
}

// Resolve looks up each selected identifier in order. Unknown identifiers
// are skipped with an UNKNOWN_MODULE warning; duplicates resolve to one spec
// per selection. Lookup failures abort.
func Resolve(ctx context.Context, gw Gateway, ids []string, logger *log.Logger) ([]ModuleSpec, errors.Warnings, error) {
	var (
		specs    = make([]ModuleSpec, 0, len(ids))
		warnings errors.Warnings
	)
	for _, id := range ids {
		if err := errors.ValidateModuleID(id); err != nil {
			return nil, nil, err
		}
		spec, ok, err := gw.Lookup(ctx, id)
		if err != nil {
			return nil, nil, fmt.Errorf("lookup %s: %w", id, err)
		}
		if !ok {
			w := errors.NewWarning(errors.ErrCodeUnknownModule, id, "module %q not found in catalog", id)
			warnings.Add(w)
			if logger != nil {
				logger.Warn("module not found in catalog", "module", id)
			}
			continue
		}
		specs = append(specs, spec)
	}
	return specs, warnings, nil
}
