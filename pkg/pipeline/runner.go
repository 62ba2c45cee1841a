package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/ioschema/pkg/allocate"
	"github.com/matzehuels/ioschema/pkg/assemble"
	"github.com/matzehuels/ioschema/pkg/catalog"
	"github.com/matzehuels/ioschema/pkg/drawio"
	"github.com/matzehuels/ioschema/pkg/errors"
	"github.com/matzehuels/ioschema/pkg/journal"
	"github.com/matzehuels/ioschema/pkg/observability"
	"github.com/matzehuels/ioschema/pkg/points"
)

// Runner executes generations against one catalog and one template.
//
// The Runner holds no per-request state: the template is copied for every
// request and the catalog is read-only, so multiple goroutines can safely
// use the same Runner.
type Runner struct {
	Catalog    catalog.Gateway
	Templates  drawio.Repository
	Precedence catalog.Precedence
	Assembler  *assemble.Assembler
	Journal    journal.Store
	Logger     *log.Logger
}

// NewRunner creates a runner with the default precedence table and
// assembler options. Fields may be replaced before first use.
func NewRunner(gw catalog.Gateway, templates drawio.Repository, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Catalog:    gw,
		Templates:  templates,
		Precedence: catalog.DefaultPrecedence(),
		Assembler:  assemble.New(assemble.Options{Glyphs: gw, Logger: logger}),
		Journal:    journal.Discard{},
		Logger:     logger,
	}
}

// Execute runs classify → resolve → sequence → validate → allocate →
// assemble. A failed stage aborts the request: no document is produced.
// Every request, failed or not, is appended to the journal.
func (r *Runner) Execute(ctx context.Context, opts Options) (_ *Result, err error) {
	start := time.Now()
	result := &Result{ID: uuid.NewString()}
	defer func() {
		result.Stats.Total = time.Since(start)
		r.record(ctx, opts, result, err)
		observability.Pipeline().OnGenerationComplete(ctx,
			result.Stats.Modules, result.Stats.Points, len(result.Warnings), result.Stats.Total, err)
	}()

	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger.With("generation", result.ID)

	// Stage 1: Classify
	var classified points.Classified
	err = r.stage(ctx, StageClassify, func() (err error) {
		classified, err = points.Classify(opts.Points)
		return err
	})
	if err != nil {
		return nil, err
	}
	result.Stats.Points = classified.Total()
	result.Stats.PointCounts = classified.Counts()
	logger.Info("classified points", "points", result.Stats.Points, "counts", result.Stats.PointCounts)

	// Stage 2: Resolve
	resolveStart := time.Now()
	var specs []catalog.ModuleSpec
	err = r.stage(ctx, StageResolve, func() error {
		var warnings errors.Warnings
		var err error
		specs, warnings, err = catalog.Resolve(ctx, r.Catalog, opts.Modules, logger)
		result.Warnings = append(result.Warnings, warnings...)
		if err != nil {
			return err
		}
		if len(specs) == 0 {
			return errors.New(errors.ErrCodeNoModules, "none of the %d selected modules is in the catalog", len(opts.Modules))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Stats.ResolveTime = time.Since(resolveStart)
	result.Stats.Modules = len(specs)

	// Stage 3: Sequence
	var sequenced []catalog.ModuleSpec
	err = r.stage(ctx, StageSequence, func() error {
		sequenced = allocate.Sequence(specs, r.Precedence)
		if n := allocate.Controllers(sequenced); n > 1 {
			result.Warnings.Add(errors.NewWarning(errors.ErrCodeSurplusController, sequenced[0].ID,
				"%d controllers selected, only the first leads the sequence", n))
			logger.Warn("more than one controller selected", "controllers", n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("sequenced modules", "order", moduleIDs(sequenced))

	// Stage 4: Validate
	err = r.stage(ctx, StageValidate, func() error {
		return allocate.Validate(classified.Demand(), sequenced)
	})
	if err != nil {
		logger.Warn("capacity check failed", "error", err)
		return nil, err
	}

	// Stage 5: Allocate
	allocStart := time.Now()
	err = r.stage(ctx, StageAllocate, func() (err error) {
		result.Instances, err = allocate.Allocate(sequenced, classified)
		return err
	})
	if err != nil {
		return nil, err
	}
	result.Fills = allocate.Summarize(result.Instances)
	result.Stats.AllocateTime = time.Since(allocStart)
	logger.Info("allocated points",
		"modules", len(result.Instances),
		"duration", result.Stats.AllocateTime)

	// Stage 6: Assemble
	asmStart := time.Now()
	err = r.stage(ctx, StageAssemble, func() error {
		doc, err := r.Templates.Load(ctx)
		if err != nil {
			return err
		}
		report, err := r.Assembler.Assemble(ctx, doc, result.Instances, opts.Params)
		result.Report = report
		if report != nil {
			result.Warnings = append(result.Warnings, report.Warnings...)
		}
		if err != nil {
			return err
		}
		result.Document, err = r.Assembler.Serialize(doc, report)
		return err
	})
	if err != nil {
		return nil, err
	}
	result.Stats.AssembleTime = time.Since(asmStart)
	logger.Info("assembled diagram",
		"pages", len(result.Report.Pages),
		"bytes", len(result.Document),
		"warnings", len(result.Warnings),
		"duration", result.Stats.AssembleTime)

	return result, nil
}

// stage runs fn between observability hooks and prefixes its error with the
// stage name.
func (r *Runner) stage(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	observability.Pipeline().OnStageStart(ctx, name)
	start := time.Now()
	err := fn()
	observability.Pipeline().OnStageComplete(ctx, name, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// record appends the request to the journal. Journal failures are logged,
// never returned.
func (r *Runner) record(ctx context.Context, opts Options, result *Result, err error) {
	if r.Journal == nil {
		return
	}
	rec := journal.Record{
		ID:          result.ID,
		At:          time.Now().UTC(),
		Modules:     opts.Modules,
		PointCounts: result.Stats.PointCounts,
		Warnings:    result.Warnings.Strings(),
		Bytes:       len(result.Document),
		Duration:    result.Stats.Total,
	}
	if err != nil {
		rec.Error = errors.UserMessage(err)
		rec.Code = string(errors.GetCode(err))
		rec.Bytes = 0
	}
	if jerr := r.Journal.Append(context.WithoutCancel(ctx), rec); jerr != nil {
		r.Logger.Warn("journal append failed", "generation", result.ID, "error", jerr)
	}
}

// Close releases the journal.
func (r *Runner) Close() error {
	if r.Journal != nil {
		return r.Journal.Close()
	}
	return nil
}

func moduleIDs(specs []catalog.ModuleSpec) []string {
	out := make([]string, len(specs))
	for i, s := range specs {
		out[i] = s.ID
	}
	return out
}
