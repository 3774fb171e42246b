package main

import (
	"os"
	"path/filepath"

	"github.com/devup-sh/devup/pkg/config"
	"github.com/devup-sh/devup/pkg/filesystem"
	"github.com/devup-sh/devup/pkg/installer"
	"github.com/devup-sh/devup/pkg/logging"
	"github.com/devup-sh/devup/pkg/pipeline"
	"github.com/devup-sh/devup/pkg/report"
	"github.com/spf13/cobra"
)

var (
	upRoot     string
	upSkipMain bool
)

var upCmd = &cobra.Command{
	Use:     "up",
	Short:   MsgUpShort,
	Long:    MsgUpLong,
	Example: MsgUpExample,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("cmd.up")

		cfg, err := config.Load("")
		if err != nil {
			report.Fatal(os.Stderr, err)
			return err
		}
		if upRoot != "" {
			cfg.TargetRoot = upRoot
			cfg.SourceRoot = filepath.Join(upRoot, ".devup", "dotfiles")
		}
		if upSkipMain {
			cfg.SkipMain = true
		}

		logger.Info().
			Str("targetRoot", cfg.TargetRoot).
			Bool("skipMain", cfg.SkipMain).
			Msg("Starting provisioning")

		// The completion handler is armed for the whole pipeline call:
		// any exit path that does not disarm it first surfaces the
		// incomplete-run notice, interrupts included.
		handler := report.NewHandler(os.Stderr)
		disarm := handler.Arm()
		defer handler.Finish()

		pctx := pipeline.NewContext(cmd.Context(), cfg, productionDeps(cfg))

		if err := pipeline.Run(pctx, pipeline.DefaultSteps()); err != nil {
			report.Fatal(os.Stderr, err)
			return err
		}

		// Disarm immediately before the final success message.
		disarm()
		pctx.Collector.Success()
		return nil
	},
}

// productionDeps wires the exec-backed collaborators.
func productionDeps(cfg *config.Config) pipeline.Deps {
	runner := installer.NewRunner()

	cloudScript := cfg.CloudAuthScript
	if bootstrap, ok := cfg.BootstrapRepo(); ok && !filepath.IsAbs(cloudScript) {
		cloudScript = filepath.Join(cfg.TargetRoot, bootstrap.Dest, "scripts", cloudScript)
	}

	return pipeline.Deps{
		FS:         filesystem.NewOS(),
		Git:        installer.NewGit(runner),
		Prober:     installer.NewProber(runner),
		Packages:   installer.NewPackageInstaller(runner),
		Toolchains: installer.NewToolchainInstaller(runner),
		Cloud:      installer.NewCloudAuth(runner, cloudScript),
		Build:      installer.NewBuildSystem(runner),
		Out:        os.Stdout,
	}
}

func init() {
	upCmd.Flags().StringVar(&upRoot, "root", "", "Target root directory (default: your home directory)")
	upCmd.Flags().BoolVar(&upSkipMain, "skip-main", false, "Skip the main project end to end (clone, hooks, databases, dump)")
}
