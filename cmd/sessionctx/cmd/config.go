package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/sessionctx/configs"
	"github.com/Aman-CERP/sessionctx/internal/config"
	"github.com/Aman-CERP/sessionctx/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage the configuration file.

The file is JSON; comments and trailing commas are allowed. Omitted keys keep
their defaults. SESSION_CONTEXT_CONFIG replaces the file path.`,
		Example: `  # Create the config file from the commented template
  sessionctx config init

  # Show effective configuration as YAML
  sessionctx config show --format yaml

  # Print config file path
  sessionctx config path`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create configuration file",
		Long: `Create the configuration file from the commented template.

An existing file is left alone unless --force is given, in which case it is
backed up next to the original before being replaced.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration (a backup is kept)")

	return cmd
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout())
	path := config.Path()

	if config.Exists(path) {
		if !force {
			out.Warning("Configuration already exists")
			out.Status("", "Location: "+path)
			out.Status("", "Use --force to replace it with the template (a backup is kept)")
			return nil
		}

		backupPath, err := config.Backup(path)
		if err != nil {
			return fmt.Errorf("failed to backup config: %w", err)
		}
		if err := config.WriteFile(path, []byte(configs.ConfigTemplate)); err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}
		out.Success("Configuration replaced with template")
		out.Status("", "Location: "+path)
		out.Status("", "Backup:   "+backupPath)
		return nil
	}

	if err := config.WriteFile(path, []byte(configs.ConfigTemplate)); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out.Success("Created configuration")
	out.Status("", "Location: "+path)
	return nil
}

func newConfigShowCmd() *cobra.Command {
	var (
		format string
		source string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, format, source)
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Output format: json, yaml")
	cmd.Flags().StringVar(&source, "source", "merged", "Config source: merged, defaults")

	return cmd
}

func runConfigShow(cmd *cobra.Command, format, source string) error {
	var cfg *config.Config
	switch source {
	case "merged":
		cfg = config.Get()
	case "defaults":
		cfg = config.NewConfig()
	default:
		return fmt.Errorf("unknown source %q (supported: merged, defaults)", source)
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case "json":
		data, err = cfg.JSON()
	case "yaml":
		data, err = cfg.YAML()
	default:
		return fmt.Errorf("unknown format %q (supported: json, yaml)", format)
	}
	if err != nil {
		return err
	}

	output.New(cmd.OutOrStdout()).Text(string(data))
	return nil
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.Path())
			return err
		},
	}
}
