package main

import (
	"errors"

	"github.com/sandevgo/lumina/internal/config"
	"github.com/sandevgo/lumina/internal/providers/calendar"
	"github.com/sandevgo/lumina/internal/service/installer"
	"github.com/sandevgo/lumina/pkg/log"
	"github.com/spf13/cobra"
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Manage the Google Calendar connection",
}

var calendarAuthCmd = &cobra.Command{
	Use:          "auth",
	Short:        "Authorize Lumina to manage your Google Calendar",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}

		cfg, err := config.ParseCalendarConfig()
		if err != nil {
			return err
		}
		if !cfg.Enabled {
			return errors.New("calendar is disabled, set LUMINA_CALENDAR_ENABLED=true first")
		}

		oauthCfg, err := calendar.OAuthConfig(cfg.CredentialsPath)
		if err != nil {
			return err
		}

		err = installer.RunCalendarAuth(calendar.AuthURL(oauthCfg), func(code string) error {
			return calendar.Exchange(ctx, oauthCfg, code, cfg.TokenPath)
		})
		if err != nil {
			return err
		}

		logger.Info().Str("path", cfg.TokenPath).Msg("calendar token saved")
		return nil
	},
}

func init() {
	calendarCmd.AddCommand(calendarAuthCmd)
	rootCmd.AddCommand(calendarCmd)
}
