package main

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gookit/color"
	"github.com/spf13/cobra"

	devtools "github.com/lambdaurora/lambdynamiclights-devtools"
	"github.com/lambdaurora/lambdynamiclights-devtools/internal"
)

//go:embed VERSION
var version string

var (
	root     string
	logLevel string
	logger   *log.Logger

	rootCmd = &cobra.Command{
		Use:           "ldl",
		Short:         "Generate mod manifests for Fabric and NeoForge",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(root)
			if err != nil {
				return err
			}
			root = abs
			logger = internal.NewLogger(os.Stderr, logLevel)
			return nil
		},
	}

	only        string
	generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Write fabric.mod.json and the NeoForge mods.toml",
		Args:  cobra.NoArgs,
		RunE:  runGenerate,
	}

	cleanCmd = &cobra.Command{
		Use:   "clean",
		Short: "Remove the generated manifests",
		Args:  cobra.NoArgs,
		RunE:  runClean,
	}

	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Print the resolved project",
		Args:  cobra.NoArgs,
		RunE:  runInfo,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the tool version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Version is %s\n", strings.TrimSpace(version))
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&root, "root", ".", "project root containing "+internal.ProjectFile)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	generateCmd.Flags().StringVar(&only, "only", "", "generate a single manifest (fmj or nmt)")

	rootCmd.AddCommand(generateCmd, cleanCmd, infoCmd, devCmd, initCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.Fprintf(os.Stderr, "<red>error:</> %s\n", err)
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	kinds, err := internal.ParseManifestKind(only)
	if err != nil {
		return err
	}
	builder, err := internal.NewBuilder(root, logger)
	if err != nil {
		return err
	}
	builder.SetOutput(cmd.OutOrStdout())
	_, err = builder.Generate(cmd.Context(), kinds)
	return err
}

func runClean(cmd *cobra.Command, args []string) error {
	builder, err := internal.NewBuilder(root, logger)
	if err != nil {
		return err
	}
	return builder.Clean()
}

func runInfo(cmd *cobra.Command, args []string) error {
	project, err := internal.LoadProject(root)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	color.Fprintf(out, "<bold>%s</> (%s)\n", project.Name, project.Namespace)
	color.Fprintf(out, "Version      <green>%s</> (%s)\n", project.FullVersion(), project.VersionType())
	color.Fprintf(out, "Minecraft    %s\n", project.GameVersionString())
	if project.Local() {
		color.Fprintf(out, "<yellow>No publishing credentials set, this is a local build</>\n")
	}
	color.Fprintf(out, "Fabric       %s\n", filepath.Join(project.OutputPath(), devtools.FmjFileName))
	if project.NeoForge.Enabled {
		color.Fprintf(out, "NeoForge     %s\n", filepath.Join(project.OutputPath(), devtools.NmtPath(project.NeoForge.Loader)))
	} else {
		color.Fprintf(out, "NeoForge     <grey>disabled</>\n")
	}
	return nil
}
