package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/daybook/internal/core/domain"
)

func payloadFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayP("set", "s", nil, "Set a field, e.g. --set content=\"buy film\" (repeatable)")
	cmd.Flags().StringP("file", "f", "", "Read fields from a YAML file")
}

func payloadFromFlags(cmd *cobra.Command) (domain.Fields, error) {
	assignments, _ := cmd.Flags().GetStringArray("set")
	file, _ := cmd.Flags().GetString("file")
	return parsePayload(file, assignments)
}

func (c *CLI) newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <resource>",
		Short: "Create an entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resource, err := domain.ParseResource(args[0])
			if err != nil {
				return err
			}
			payload, err := payloadFromFlags(cmd)
			if err != nil {
				return err
			}
			id, _ := cmd.Flags().GetString("id")

			modalID := c.app.OpenModal(domain.ModalDescriptor{
				ComponentKind: domain.EditModalKind(resource),
				Subject:       "new",
			})
			out := c.app.Submit(cmd.Context(), domain.MutationIntent{
				Key:     domain.NewKey(resource, id),
				Kind:    domain.MutationCreate,
				Payload: payload,
				ModalID: modalID,
			})
			if err := outcomeErr(out); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Entity.Key.String())
			return nil
		},
	}
	payloadFlags(cmd)
	cmd.Flags().String("id", "", "Use this id instead of a generated one")
	return cmd
}

func (c *CLI) newEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <resource>/<id>",
		Short: "Change fields of an entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := domain.ParseKey(args[0])
			if err != nil {
				return err
			}
			payload, err := payloadFromFlags(cmd)
			if err != nil {
				return err
			}
			prev, err := c.app.Load(cmd.Context(), key)
			if err != nil {
				return err
			}

			modalID := c.app.OpenModal(domain.ModalDescriptor{
				ComponentKind: domain.EditModalKind(key.Resource),
				Subject:       key.ID,
			})
			return outcomeErr(c.app.Submit(cmd.Context(), domain.MutationIntent{
				Key:      key,
				Kind:     domain.MutationUpdate,
				Payload:  payload,
				Previous: &prev,
				ModalID:  modalID,
			}))
		},
	}
	payloadFlags(cmd)
	return cmd
}

func (c *CLI) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <resource>/<id>",
		Short: "Delete an entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := domain.ParseKey(args[0])
			if err != nil {
				return err
			}
			prev, err := c.app.Load(cmd.Context(), key)
			if err != nil {
				return err
			}

			modalID := c.app.OpenModal(domain.ModalDescriptor{
				ComponentKind: domain.ModalConfirmDelete,
				Subject:       key.ID,
			})
			return outcomeErr(c.app.Submit(cmd.Context(), domain.MutationIntent{
				Key:      key,
				Kind:     domain.MutationDelete,
				Previous: &prev,
				ModalID:  modalID,
			}))
		},
	}
}
