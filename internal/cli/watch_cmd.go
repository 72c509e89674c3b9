package cli

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newWatchCmd(app *App) *cobra.Command {
	var refresh time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live view of open violations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return fmt.Errorf("watch needs an interactive terminal")
			}
			if refresh <= 0 {
				return fmt.Errorf("--refresh must be positive")
			}
			p := tea.NewProgram(newWatchModel(cmd.Context(), app, refresh), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err := p.Run()
			return err
		},
	}

	cmd.Flags().DurationVar(&refresh, "refresh", 5*time.Second, "How often to reload open violations")

	return cmd
}
