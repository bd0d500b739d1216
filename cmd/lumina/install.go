package main

import (
	"github.com/sandevgo/lumina/internal/config"
	"github.com/sandevgo/lumina/internal/service/installer"
	"github.com/sandevgo/lumina/pkg/log"
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:           "install",
	Short:         "Configure Lumina interactively",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting installation process")

		runtimePath := config.GetRuntimePath()

		// run wizard (includes save step)
		state, err := installer.RunWizard(runtimePath)
		if err != nil {
			return err
		}

		if !state.Settings.HasProvider() {
			logger.Warn().Msg("no provider key configured, every reply will be the fallback apology")
		}

		logger.Info().Msgf("initialized runtime directory at: %s", runtimePath)
		if state.Settings.CalendarEnabled {
			logger.Info().Msg("Run 'lumina calendar auth' to connect Google Calendar.")
		}
		logger.Info().Msg("Installation complete! You can now run 'lumina start'.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
