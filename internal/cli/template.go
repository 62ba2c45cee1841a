package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ioschema/pkg/drawio"
)

// templateCommand manages the master diagram.
func (c *CLI) templateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Show or replace the master draw.io template",
	}

	cmd.AddCommand(c.templateInfoCommand())
	cmd.AddCommand(c.templateUpdateCommand())

	return cmd
}

func (c *CLI) templateInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Describe the current template",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			info, err := drawio.NewFileRepository(cfg.Template.Path).Info(cmd.Context())
			if err != nil {
				return err
			}
			printTemplateInfo(info)
			return nil
		},
	}
}

func (c *CLI) templateUpdateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update <file.drawio>",
		Short: "Replace the template with a new file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			prog := newProgress(c.Logger)
			info, err := drawio.NewFileRepository(cfg.Template.Path).Update(cmd.Context(), file)
			if err != nil {
				return err
			}
			printSuccess("Template updated")
			printTemplateInfo(info)
			prog.done("template replaced", "source", args[0])
			return nil
		},
	}
}

func printTemplateInfo(info drawio.Info) {
	printKeyValue("Name", info.Name)
	printKeyValue("Path", info.Path)
	printKeyValue("Modified", info.ModTime.Format("2006-01-02 15:04:05"))
	printKeyValue("Size", fmt.Sprintf("%d bytes", info.Size))
	printKeyValue("Pages", fmt.Sprintf("%d", len(info.Pages)))
	if len(info.Pages) > 0 {
		printDetail("%s", strings.Join(info.Pages, ", "))
	}
}
