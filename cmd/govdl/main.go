package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "govdl",
		Short: "Self-hosted media download service",
		Long: "govdl exposes an HTTP API that probes media URLs for downloadable\n" +
			"variants and runs fetch-and-transcode jobs in the background,\n" +
			"delegating extraction to an external yt-dlp binary.",
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the config file")

	root.AddCommand(serveCmd())

	// Bare invocation starts the server, mirroring how the binary is run in
	// containers.
	root.RunE = func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
