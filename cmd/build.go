package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Bitlatte/folio/internal/build"
	"github.com/Bitlatte/folio/internal/config"
	"github.com/Bitlatte/folio/internal/site"
	"github.com/Bitlatte/folio/internal/siteconfig"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Builds the site into the output directory",
	Long: `The build command copies passthrough files, loads global data from the data
directory, renders every template under the input directory through its layouts
and writes the result to the output directory (default './_site/').`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := runBuildProcess(cmd.Context(), appConfig)
		return err
	},
}

// runBuildProcess configures a site from cfg and builds it once.
func runBuildProcess(ctx context.Context, cfg config.Config) (build.Result, error) {
	sc := site.New(cfg, logger)
	if err := siteconfig.Apply(sc); err != nil {
		return build.Result{}, fmt.Errorf("configure site: %w", err)
	}
	return build.New(sc).Run(ctx)
}

func init() {
	buildCmd.Flags().Bool("clean", true, "remove the output directory before building")
	rootCmd.AddCommand(buildCmd)
}
