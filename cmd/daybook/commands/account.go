package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/daybook/internal/core/domain"
)

func (c *CLI) newResetPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password <email>",
		Short: "Send a password reset link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			modalID := c.app.OpenModal(domain.ModalDescriptor{ComponentKind: domain.ModalResetPassword})
			return outcomeErr(c.app.RequestPasswordReset(cmd.Context(), args[0], modalID))
		},
	}
}
