// Package commands implements the entitymodel command line
package commands

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/entitymodel/internal/catalog"
	"github.com/conduit-lang/entitymodel/internal/cli/config"
	"github.com/conduit-lang/entitymodel/internal/cli/ui"
	"github.com/conduit-lang/entitymodel/internal/orm/metadata"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// app carries the state shared by subcommands once the root command ran
type app struct {
	configDir string
	noColor   bool

	cfg    *config.Config
	logger *zap.Logger
}

func (a *app) load(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadFrom(a.configDir)
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.FormatMessage(ui.MessageOptions{
			Level:        ui.LevelError,
			Context:      "configuration error",
			Problem:      err.Error(),
			HelpCommands: []string{"View config: cat entitymodel.yml"},
			NoColor:      a.noColor,
		}))
		return err
	}
	a.cfg = cfg
	if !cfg.Output.Color {
		a.noColor = true
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

// loadCatalog builds a sample model with the configured naming
func (a *app) loadCatalog(cmd *cobra.Command, name string) (*metadata.Model, error) {
	m, err := catalog.Load(name, catalog.Options{
		Naming: a.cfg.NamingStrategy(),
		Schema: a.cfg.Naming.DefaultSchema,
		Logger: a.logger.Named("model"),
	})
	switch {
	case err == nil:
		return m, nil
	case errors.Is(err, catalog.ErrUnknownCatalog):
		fmt.Fprint(cmd.ErrOrStderr(), ui.CatalogNotFound(name, catalog.Names(), a.noColor))
	default:
		fmt.Fprint(cmd.ErrOrStderr(), ui.ModelError(err.Error(), a.noColor))
	}
	return nil, err
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "entitymodel",
		Short: "Build and compare convention-based entity models",
		Long: color.CyanString(`entitymodel - convention-based entity metadata

Builds entity models from Go struct types, discovers keys, inheritance
and many-to-many relationships, and computes the schema operations
between two model versions.`),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
	}
	rootCmd.PersistentFlags().StringVar(&a.configDir, "config-dir", ".", "directory holding entitymodel.yml")
	rootCmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(newInspectCommand(a))
	rootCmd.AddCommand(newDiffCommand(a))
	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	noColor := false
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the entitymodel version, Git commit, build date, and Go version",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			noColor, _ = cmd.Flags().GetBool("no-color")
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			table := ui.NewKeyValueTable(cmd.OutOrStdout(), noColor)
			table.AddRow("entitymodel version", Version)
			table.AddRow("Git commit", GitCommit)
			table.AddRow("Build date", BuildDate)
			table.AddRow("Go version", goVer)
			table.Render()
		},
	}
	return cmd
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
