package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/entitymodel/internal/cli/config"
	"github.com/conduit-lang/entitymodel/internal/cli/ui"
	"github.com/conduit-lang/entitymodel/internal/orm/migrate"
)

// migrationDocument is the yaml and json form of a diff
type migrationDocument struct {
	Name        string             `yaml:"name" json:"name"`
	From        string             `yaml:"from" json:"from"`
	To          string             `yaml:"to" json:"to"`
	Destructive bool               `yaml:"destructive" json:"destructive"`
	Operations  []migrate.Document `yaml:"operations" json:"operations"`
}

func newDiffCommand(a *app) *cobra.Command {
	var from, to, format string

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Print the schema operations between two catalogs",
		Long: `Build two sample catalogs and print the operations that migrate the
tables of the first to the tables of the second.

Operations are ordered so they can be applied one after the other.
Destructive operations may lose data. Breaking operations may fail on
existing rows or break existing clients.`,
		Example: `  entitymodel diff
  entitymodel diff --from blog-v1 --to blog-v2 --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = a.cfg.OutputFormat()
			}
			format = strings.ToLower(format)

			oldModel, err := a.loadCatalog(cmd, from)
			if err != nil {
				return err
			}
			newModel, err := a.loadCatalog(cmd, to)
			if err != nil {
				return err
			}

			ops, err := migrate.NewDiffer(oldModel, newModel).ComputeDiff()
			if err != nil {
				fmt.Fprint(cmd.ErrOrStderr(), ui.ModelError(err.Error(), a.noColor))
				return err
			}
			a.logger.Debug("diff computed",
				zap.String("from", from),
				zap.String("to", to),
				zap.Int("operations", len(ops)),
			)

			doc := migrationDocument{
				Name:        migrate.GenerateName(ops),
				From:        from,
				To:          to,
				Destructive: migrate.HasDestructive(ops),
				Operations:  migrate.Documents(ops),
			}

			out := cmd.OutOrStdout()
			switch format {
			case config.FormatYAML:
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(doc); err != nil {
					return fmt.Errorf("encoding yaml: %w", err)
				}
				return enc.Close()
			case config.FormatJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			case config.FormatText:
				writeOperations(out, cmd.ErrOrStderr(), doc.Name, ops, a.noColor)
				return nil
			}
			return fmt.Errorf("unknown format %q (expected text, yaml or json)", format)
		},
	}

	cmd.Flags().StringVar(&from, "from", "blog-v1", "catalog describing the current tables")
	cmd.Flags().StringVar(&to, "to", "blog-v2", "catalog describing the target tables")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: text, yaml or json (default from config)")
	return cmd
}

func writeOperations(out, errOut io.Writer, name string, ops []migrate.Operation, noColor bool) {
	if len(ops) == 0 {
		fmt.Fprintln(out, ui.FormatSuccess("no changes", noColor))
		return
	}

	ui.Header(out, "Migration: "+name, noColor)
	table := ui.NewTable(out, []string{"#", "Operation", "Flags"}, noColor)
	var destructive []string
	for i, op := range ops {
		style := ui.RowPlain
		flags := ""
		switch {
		case op.IsDestructive():
			style = ui.RowDanger
			flags = "destructive"
			destructive = append(destructive, op.String())
		case op.IsBreaking():
			style = ui.RowWarning
			flags = "breaking"
		}
		table.AddStyledRow(style, strconv.Itoa(i+1), op.String(), flags)
	}
	table.Render()

	if len(destructive) > 0 {
		fmt.Fprint(errOut, ui.DestructiveWarning(destructive, noColor))
	}
}
