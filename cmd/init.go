package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cfgcheck/cfgcheck/internal/initcmd"
)

var (
	initDefaultSchema string
	initAlias         string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file or add a schema alias",
	Long: `Create the cfgcheck config file with commented defaults. With --alias,
add a named remote schema to the config file instead, creating the file if
needed. The file is written to --config or $HOME/.config/cfgcheck/config.yaml.`,
	Example: `  cfgcheck init --default-schema builtin:cdba
  cfgcheck init --alias boards=github.com/acme/lab//schemas/boards.yaml@v1.0.0`,
	Args: usageArgs(cobra.NoArgs),
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initDefaultSchema, "default-schema", "", "schema used when --schema is not given")
	initCmd.Flags().StringVar(&initAlias, "alias", "", "add a schema alias (name=url or name=url@ref)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	w := newWriter(cmd)

	opts := &initcmd.Opts{
		Path:          cfgFile,
		DefaultSchema: initDefaultSchema,
	}

	if initAlias != "" {
		alias, err := initcmd.ParseAlias(initAlias)
		if err != nil {
			return &usageError{err: err}
		}

		opts.Alias = alias
	}

	path, err := initcmd.Run(opts)
	if err != nil {
		return err
	}

	if opts.Alias != nil {
		w.Successf("Added schema alias %s to %s", w.Bold(opts.Alias.Name), path)
	} else {
		w.Successf("Wrote %s", path)
	}

	return nil
}
