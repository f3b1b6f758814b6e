package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/pokedex-backend/internal/app"
	"github.com/heartmarshall/pokedex-backend/internal/domain"
	"github.com/heartmarshall/pokedex-backend/internal/service/navigation"
	"github.com/heartmarshall/pokedex-backend/internal/viewmodel"
)

func newShowCmd(g *globalOptions) *cobra.Command {
	var ref string

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Print the detail view of one record by id or by --url",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := showTarget(args, ref)
			if err != nil {
				return err
			}
			return withSession(cmd, g, func(ctx context.Context, _ *app.Core, s *viewmodel.Session) error {
				d, err := s.Detail(ctx, target)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), d)
			})
		},
	}
	cmd.Flags().StringVar(&ref, "url", "", "remote reference of the record")
	return cmd
}

func showTarget(args []string, ref string) (navigation.Target, error) {
	switch {
	case len(args) == 1 && ref != "":
		return navigation.Target{}, errors.New("pass either an id or --url, not both")
	case len(args) == 1:
		id, err := domain.ParseID(args[0])
		if err != nil {
			return navigation.Target{}, err
		}
		return targetByID(id), nil
	case ref != "":
		return navigation.Target{Kind: navigation.KindByReference, Reference: ref}, nil
	default:
		return navigation.Target{}, errors.New("an id or --url is required")
	}
}
