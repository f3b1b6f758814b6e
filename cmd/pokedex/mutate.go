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

type recordFlags struct {
	name   string
	height string
	weight string
	image  string
	types  string
}

func (f *recordFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.name, "name", "", "display name")
	fs.StringVar(&f.height, "height", "", "height in meters")
	fs.StringVar(&f.weight, "weight", "", "weight in kilograms")
	fs.StringVar(&f.image, "image", "", "image URL (http or https)")
	fs.StringVar(&f.types, "types", "", "types separated by comma or space")
}

func newFavoriteCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "favorite <id>",
		Short: "Toggle the favorite flag of a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseID(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, g, func(ctx context.Context, _ *app.Core, s *viewmodel.Session) error {
				on, err := s.ToggleFavorite(ctx, id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{"id": id, "favorite": on})
			})
		},
	}
}

func newCreateCmd(g *globalOptions) *cobra.Command {
	f := &recordFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a custom record and print its detail view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, g, func(ctx context.Context, _ *app.Core, s *viewmodel.Session) error {
				s.OpenCreate()
				_, target, err := s.CreateCustom(ctx, viewmodel.CustomForm{
					Name:   f.name,
					Height: viewmodel.Measure(f.height),
					Weight: viewmodel.Measure(f.weight),
					Image:  f.image,
					Types:  f.types,
				})
				if err != nil {
					return err
				}
				d, err := s.Detail(ctx, target)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), d)
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func newEditCmd(g *globalOptions) *cobra.Command {
	f := &recordFlags{}
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a record; unset flags keep their current values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseID(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, g, func(ctx context.Context, core *app.Core, s *viewmodel.Session) error {
				current, err := core.Resolver.Resolve(ctx, targetByID(id))
				if err != nil {
					return err
				}
				s.OpenEdit(current.Record)
				form := s.Draft()
				fs := cmd.Flags()
				if fs.Changed("name") {
					form.Name = f.name
				}
				if fs.Changed("height") {
					form.Height = viewmodel.Measure(f.height)
				}
				if fs.Changed("weight") {
					form.Weight = viewmodel.Measure(f.weight)
				}
				if fs.Changed("image") {
					form.Image = f.image
				}
				if fs.Changed("types") {
					form.Types = f.types
				}

				if err := s.EditRecord(ctx, id, form); err != nil {
					return err
				}
				d, err := s.Detail(ctx, targetByID(id))
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), d)
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func newDeleteCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Hide a record from every view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseID(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, g, func(ctx context.Context, _ *app.Core, s *viewmodel.Session) error {
				s.OpenDelete(id)
				if err := s.SoftDelete(ctx, id); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{"id": id, "deleted": true})
			})
		},
	}
}

func newRestoreCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: "Undo a delete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseID(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, g, func(ctx context.Context, _ *app.Core, s *viewmodel.Session) error {
				if err := s.Restore(ctx, id); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{"id": id, "deleted": false})
			})
		},
	}
}

func targetByID(id int) navigation.Target {
	return navigation.Target{Kind: navigation.KindByID, ID: id}
}

func newResetCmd(g *globalOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear favorites, custom records, edits and deletes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("reset discards every local change; pass --yes to confirm")
			}
			return withSession(cmd, g, func(ctx context.Context, core *app.Core, _ *viewmodel.Session) error {
				return core.Store.Reset(ctx)
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}
