package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ioschema/pkg/assemble"
	"github.com/matzehuels/ioschema/pkg/catalog"
	"github.com/matzehuels/ioschema/pkg/errors"
	"github.com/matzehuels/ioschema/pkg/observability"
	"github.com/matzehuels/ioschema/pkg/pipeline"
	"github.com/matzehuels/ioschema/pkg/points"
)

type generateFlags struct {
	modules    []string
	pick       bool
	output     string
	paramsFile string
	params     assemble.ProjectParams
	quiet      bool
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var f generateFlags

	cmd := &cobra.Command{
		Use:   "generate <points.json>",
		Short: "Generate a wiring diagram from a point list",
		Long: `Generate allocates the points of a JSON point list onto the selected modules
and writes the resulting draw.io diagram.

Modules are catalog identifiers given with --modules, in any order: the
controller is placed first and cards follow the precedence table. Use
--pick to choose them interactively. Pass "-" to read points from stdin.`,
		Example: `  ioschema generate points.json -m automate,s4th_16_di,s4th_8_ai_t
  ioschema generate points.json --pick --site "Station Nord" --author "J. Martin"
  cat points.json | ioschema generate - -m automate -o cabinet.drawio`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd.Context(), args[0], &f, cmd.Flags().Changed)
		},
	}

	cmd.Flags().StringSliceVarP(&f.modules, "modules", "m", nil, "module identifiers (comma-separated)")
	cmd.Flags().BoolVar(&f.pick, "pick", false, "choose modules interactively")
	cmd.Flags().StringVarP(&f.output, "output", "o", pipeline.OutputName, "output file")
	cmd.Flags().StringVar(&f.paramsFile, "params", "", "project parameters as a JSON file")
	cmd.Flags().StringVar(&f.params.Author, "author", "", "author printed in title blocks")
	cmd.Flags().StringVar(&f.params.SiteName, "site", "", "site name")
	cmd.Flags().StringVar(&f.params.CabinetName, "cabinet", "", "cabinet name")
	cmd.Flags().StringVar(&f.params.EditionDate, "date", "", "edition date, DD/MM/YYYY (default today)")
	cmd.Flags().StringVar(&f.params.RevisionIndex, "revision", "", "revision index")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "skip the allocation summary")

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, input string, f *generateFlags, changed func(string) bool) error {
	raw, err := readPoints(input)
	if err != nil {
		return err
	}
	params, err := f.projectParams(changed)
	if err != nil {
		return err
	}

	return c.withConfig(ctx, appOptions{journal: true}, func(a *app) error {
		modules := f.modules
		if f.pick {
			if modules, err = pickFromCatalog(ctx, a.catalog); err != nil {
				return err
			}
			if len(modules) == 0 {
				printInfo("No modules selected")
				return nil
			}
		}

		prog := newProgress(c.Logger)
		spinner := newSpinner(ctx, "Generating...")
		prev := observability.Pipeline()
		observability.SetPipelineHooks(spinnerHooks{spinner: spinner})
		defer observability.SetPipelineHooks(prev)

		spinner.Start()
		result, err := a.runner.Execute(ctx, pipeline.Options{
			Points:  raw,
			Modules: modules,
			Params:  params,
			Logger:  c.Logger,
		})
		if err != nil {
			spinner.StopWithError("Generation failed")
			return err
		}
		spinner.Stop()

		if err := os.WriteFile(f.output, result.Document, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f.output, err)
		}

		printSuccess("Generated %d pages for %d modules", len(result.Report.Pages), len(result.Instances))
		printFile(f.output)
		if !f.quiet {
			fmt.Println(fillTable(result.Fills))
		}
		printWarnings(result.Warnings)
		prog.done("generation complete", "id", result.ID, "bytes", len(result.Document))
		return nil
	})
}

// projectParams merges the --params file with the individual flags, flags
// winning.
func (f *generateFlags) projectParams(changed func(string) bool) (assemble.ProjectParams, error) {
	var p assemble.ProjectParams
	if f.paramsFile != "" {
		data, err := os.ReadFile(f.paramsFile)
		if err != nil {
			return p, err
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return p, errors.Wrap(errors.ErrCodeMalformedInput, err, "parse %s", f.paramsFile)
		}
	}
	overrides := []struct {
		flag     string
		dst, src *string
	}{
		{"author", &p.Author, &f.params.Author},
		{"site", &p.SiteName, &f.params.SiteName},
		{"cabinet", &p.CabinetName, &f.params.CabinetName},
		{"date", &p.EditionDate, &f.params.EditionDate},
		{"revision", &p.RevisionIndex, &f.params.RevisionIndex},
	}
	for _, o := range overrides {
		if changed(o.flag) {
			*o.dst = *o.src
		}
	}
	return p, nil
}

func readPoints(path string) ([]points.RawPoint, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		r = file
	}
	return points.Decode(r)
}

func pickFromCatalog(ctx context.Context, gw catalog.Gateway) ([]string, error) {
	specs, err := gw.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(specs) == 0 {
		return nil, errors.New(errors.ErrCodeNoModules, "the catalog is empty")
	}
	return pickModules(catalog.Group(specs))
}
