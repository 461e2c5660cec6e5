package cli

import (
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the 24h match plan without starting the loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Plan(cmd.Context())
	},
}
