package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "profilectl",
		Short: "Manage inheritance across slicer profile files",
		Long: `Profilectl works on directories of INI-style print and filament profiles.
It resolves the inherits references between them, factors shared settings
into synthesized parents, relocates internal profiles into vendor bundles
under privatized names, and strips settings already supplied by ancestors.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			setupLogging(cmd)
			return initConfig(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: .profilectl.yaml in the working directory or $HOME)")
	flags.Bool("debug", false, "enable debug logging")
	flags.StringP("dir", "d", "", "profile directory (default: profile_dir from config, else current directory)")
	flags.StringP("type", "t", "print", "profile type to operate on: print|filament")
	flags.StringSlice("exclude", nil, "gitignore-style patterns for files to skip while loading")

	combineCmd := &cobra.Command{
		Use:   "combine <parent-name>",
		Short: "Factor properties common to the selection into a new parent profile",
		Args:  cobra.ExactArgs(1),
		RunE:  RunCombine,
	}
	addSelectionFlags(combineCmd)
	combineCmd.Flags().Bool("with-descendants", false, "extend the selection with all descendants of selected profiles")
	combineCmd.Flags().Bool("json", false, "print a machine-readable result")

	bundleCmd := &cobra.Command{
		Use:   "bundle <bundle-name>",
		Short: "Move the selection's internal profiles into a vendor bundle under privatized names",
		Args:  cobra.ExactArgs(1),
		RunE:  RunBundle,
	}
	addSelectionFlags(bundleCmd)
	bundleCmd.Flags().String("bundle-dir", "", "bundle directory (default: bundle_dir from config)")
	bundleCmd.Flags().Bool("with-descendants", false, "extend the selection with all descendants of selected profiles")
	bundleCmd.Flags().Bool("json", false, "print a machine-readable result")

	cleanCmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove properties whose value an ancestor already supplies",
		Args:  cobra.NoArgs,
		RunE:  RunClean,
	}
	cleanCmd.Flags().String("bundle-file", "", "bundle file to clean and re-hoist alongside the directory")
	cleanCmd.Flags().Bool("json", false, "print a machine-readable result")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List loaded profiles with their files and parents",
		Args:  cobra.NoArgs,
		RunE:  RunList,
	}
	addSelectionFlags(listCmd)
	listCmd.Flags().Bool("json", false, "print machine-readable profile records")

	ancestorsCmd := &cobra.Command{
		Use:   "ancestors <profile-name>",
		Short: "Show a profile's inheritance chain up to its root",
		Args:  cobra.ExactArgs(1),
		RunE:  RunAncestors,
	}
	ancestorsCmd.Flags().Bool("json", false, "print machine-readable chain records")

	descendantsCmd := &cobra.Command{
		Use:   "descendants <profile-name>",
		Short: "Show every profile that inherits from the named one, transitively",
		Args:  cobra.ExactArgs(1),
		RunE:  RunDescendants,
	}
	descendantsCmd.Flags().Bool("json", false, "print machine-readable descendant records")

	editCmd := &cobra.Command{
		Use:   "edit",
		Short: "Interactively edit single properties, with relative adjustments",
		Args:  cobra.NoArgs,
		RunE:  RunEdit,
	}

	rootCmd.AddCommand(combineCmd, bundleCmd, cleanCmd, listCmd, ancestorsCmd, descendantsCmd, editCmd)
	return rootCmd
}

func setupLogging(cmd *cobra.Command) {
	level := slog.LevelInfo
	if debug, err := cmd.Flags().GetBool("debug"); err == nil && debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

func initConfig(cmd *cobra.Command) error {
	cfgFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".profilectl")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("PROFILECTL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		slog.Debug("using config file", "file", viper.ConfigFileUsed())
	}
	return nil
}
