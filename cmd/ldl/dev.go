package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/lambdaurora/lambdynamiclights-devtools/internal"
)

var (
	port   int
	devCmd = &cobra.Command{
		Use:   "dev",
		Short: "Regenerate on change and serve the manifests",
		Args:  cobra.NoArgs,
		RunE:  runDev,
	}

	initName  string
	initForce bool
	initCmd   = &cobra.Command{
		Use:   "init",
		Short: "Create " + internal.ProjectFile + " in the project root",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
)

func init() {
	devCmd.Flags().IntVar(&port, "port", 8080, "port for server")

	initCmd.Flags().StringVar(&initName, "name", "", "mod display name")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing "+internal.ProjectFile)
}

func runDev(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	builder, err := internal.NewBuilder(root, logger)
	if err != nil {
		return err
	}
	builder.SetOutput(cmd.OutOrStdout())
	server, err := internal.NewServer(builder, logger, port)
	if err != nil {
		return err
	}

	if _, err := builder.Generate(ctx, internal.All); err != nil {
		logger.Error("error during generation", "err", err)
	}

	paths, err := builder.WatchedFiles()
	if err != nil {
		return err
	}
	project, err := builder.Project()
	if err != nil {
		return err
	}

	rebuild := func() {
		res, err := builder.Generate(ctx, internal.All)
		if err != nil {
			logger.Error("error during regeneration", "err", err)
			var stderr string
			if res != nil {
				stderr = string(res.Stderr)
			}
			server.BuildError(stderr, err.Error())
			return
		}
		logger.Info("manifests regenerated", "files", len(res.Files))
		server.Reload(internal.All, res.Files)
	}

	watchErr := make(chan error, 1)
	go func() {
		watchErr <- internal.Watch(ctx, logger, paths, []string{project.OutputPath()}, rebuild)
	}()

	color.Fprintf(cmd.OutOrStdout(), "Ready on <green>http://localhost:%d</>\n", port)
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(ctx)
	}()

	select {
	case err := <-watchErr:
		stop()
		<-serveErr
		return err
	case err := <-serveErr:
		stop()
		<-watchErr
		return err
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	prompter := internal.NewDefaultsPrompter()
	if internal.IsInteractive() {
		prompter = internal.NewTerminalPrompter()
	}
	name := initName
	if name == "" {
		name = filepath.Base(root)
	}
	project, err := internal.Scaffold(prompter, internal.ScaffoldOptions{Name: name})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return err
	}
	target, err := internal.WriteProject(root, project, initForce)
	if err != nil {
		return err
	}
	color.Fprintf(cmd.OutOrStdout(), "Wrote <green>%s</>\n", target)
	return nil
}
