package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/daybook/internal/core/domain"
)

func (c *CLI) newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <resource>/<id>",
		Short: "Show one entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := domain.ParseKey(args[0])
			if err != nil {
				return err
			}
			e, err := c.app.Load(cmd.Context(), key)
			if err != nil {
				return err
			}
			out, err := renderEntity(e)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func (c *CLI) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <resource>",
		Short: "List entities, most recently updated first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resource, err := domain.ParseResource(args[0])
			if err != nil {
				return err
			}
			entities, err := c.app.List(cmd.Context(), resource)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, e := range entities {
				summary := ""
				if v, err := domain.DecodeVariant(resource, e.Fields); err == nil {
					summary = v.Summary()
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\n", e.Key.ID, summary)
			}
			return nil
		},
	}
}
