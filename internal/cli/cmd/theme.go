package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"facequiz/internal/theme"
)

func newThemeCmd() *cobra.Command {
	show := func(cmd *cobra.Command, _ []string) error {
		t, err := themeStore(cmd).Load()
		if err != nil {
			return &ExitError{Code: ExitCLIError, Err: err}
		}
		printTheme(cmd.OutOrStdout(), t)
		return nil
	}
	cmd := &cobra.Command{
		Use:           "theme",
		Short:         "Show or change the light/dark preference",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          show,
	}
	cmd.PersistentFlags().String("preferences", "", "Preferences file (default in the state dir)")
	_ = cmd.PersistentFlags().MarkHidden("preferences")

	cmd.AddCommand(&cobra.Command{
		Use:           "show",
		Short:         "Print the stored theme",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          show,
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "toggle",
		Short:         "Switch between light and dark",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := theme.Toggle(themeStore(cmd))
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			printTheme(cmd.OutOrStdout(), t)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "set [light|dark]",
		Short:         "Store a theme",
		SilenceUsage:  true,
		SilenceErrors: true,
		ValidArgs:     []string{string(theme.Light), string(theme.Dark)},
		Args:          cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := theme.Parse(args[0])
			if err := themeStore(cmd).Save(t); err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			printTheme(cmd.OutOrStdout(), t)
			return nil
		},
	})
	return cmd
}

func themeStore(cmd *cobra.Command) theme.Store {
	if p, _ := cmd.Flags().GetString("preferences"); p != "" {
		return theme.NewFileStore(p)
	}
	return preferenceStore()
}

func printTheme(w io.Writer, t theme.Theme) {
	fmt.Fprintf(w, "theme: %s (toggle: %s)\n", strings.ToLower(string(t)), t.ButtonLabel())
}
