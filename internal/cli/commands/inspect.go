package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/entitymodel/internal/cli/ui"
	"github.com/conduit-lang/entitymodel/internal/orm/migrate"
)

// debugHeadings are the line prefixes colored in the model debug string
var debugHeadings = []string{
	"Model:",
	"Entity:",
	"Properties:",
	"Navigations:",
	"Keys:",
	"Foreign keys:",
	"Indexes:",
	"Annotations:",
}

func newInspectCommand(a *app) *cobra.Command {
	var catalogName string
	var tables bool

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the model built from a sample catalog",
		Long: `Build a model from one of the compiled-in sample catalogs and print it.

By default the model debug string is printed. With --tables the relational
mapping is listed instead.`,
		Example: `  entitymodel inspect
  entitymodel inspect --catalog shop --tables`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.loadCatalog(cmd, catalogName)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ui.Header(out, "Catalog: "+catalogName, a.noColor)

			if !tables {
				ui.Highlight(out, m.DebugString(""), debugHeadings, a.noColor)
				return nil
			}

			mapped, err := migrate.Tables(m)
			if err != nil {
				fmt.Fprint(cmd.ErrOrStderr(), ui.ModelError(err.Error(), a.noColor))
				return err
			}
			table := ui.NewTable(out, []string{"Table", "Entity", "Columns", "Primary key", "Foreign keys"}, a.noColor)
			for _, t := range mapped {
				pk := ""
				if t.PrimaryKey != nil {
					pk = strings.Join(t.PrimaryKey.Columns, ", ")
				}
				table.AddRow(t.QualifiedName(), t.Entity, strconv.Itoa(len(t.Columns)), pk, strconv.Itoa(len(t.ForeignKeys)))
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVarP(&catalogName, "catalog", "c", "blog", "sample catalog to build")
	cmd.Flags().BoolVar(&tables, "tables", false, "list the mapped tables")
	return cmd
}
