package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ioschema/pkg/catalog"
)

// cardsCommand lists the catalog.
func (c *CLI) cardsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "cards",
		Short: "List catalog modules grouped by brand",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withConfig(cmd.Context(), appOptions{}, func(a *app) error {
				specs, err := a.catalog.All(cmd.Context())
				if err != nil {
					return err
				}
				groups := catalog.Group(specs)
				if asJSON {
					enc := json.NewEncoder(os.Stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(groups)
				}
				if len(groups) == 0 {
					printInfo("The catalog is empty")
					return nil
				}
				for _, g := range groups {
					fmt.Println(StyleTitle.Render(g.Brand))
					fmt.Println(catalogTable(g))
				}
				printDetail("%d modules in %s", len(specs), a.cfg.Catalog.Path)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
