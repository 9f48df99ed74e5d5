package cmd

import (
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/cfgcheck/cfgcheck/internal/info"
	"github.com/cfgcheck/cfgcheck/internal/list"
)

var (
	schemasOutputFormat string
	showOutputFormat    string
)

var schemasCmd = &cobra.Command{
	Use:   "schemas",
	Short: "List schemas available by name",
	Long: `List the schemas built into cfgcheck and the aliases defined in the config
file. Either name can be passed to --schema.`,
	Aliases: []string{"ls"},
	Args:    usageArgs(cobra.NoArgs),
	RunE:    runSchemas,
}

var schemasShowCmd = &cobra.Command{
	Use:   "show <schema>",
	Short: "Show a summary of a schema",
	Long: `Resolve a schema the way --schema does and print its title, top-level
properties, and definitions. Use -o json or -o yaml to print the whole schema.`,
	Example: `  cfgcheck schemas show builtin:cdba
  cfgcheck schemas show ./schema.yaml -o yaml`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: runSchemasShow,
}

func init() {
	schemasCmd.Flags().StringVarP(&schemasOutputFormat, "output", "o", "table", "output format (table, json)")
	schemasShowCmd.Flags().StringVarP(&showOutputFormat, "output", "o", "text", "output format (text, json, yaml)")
	schemasShowCmd.Flags().BoolVar(&checkRefresh, "refresh", false, "re-fetch remote schemas instead of using the cache")
	schemasCmd.AddCommand(schemasShowCmd)
	rootCmd.AddCommand(schemasCmd)
}

func runSchemas(cmd *cobra.Command, _ []string) error {
	cfg, err := loadGlobalConfig()
	if err != nil {
		return err
	}

	opts := &list.Opts{
		Aliases:      cfg.Schemas,
		OutputFormat: schemasOutputFormat,
		Writer:       cmd.OutOrStdout(),
	}

	return list.Run(opts)
}

func runSchemasShow(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	cfg, err := loadGlobalConfig()
	if err != nil {
		return err
	}

	src, err := newResolver(cfg, afero.NewOsFs(), logger).Resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	opts := &info.Opts{
		Source:       src,
		Writer:       cmd.OutOrStdout(),
		OutputFormat: showOutputFormat,
	}

	return info.Run(opts)
}
