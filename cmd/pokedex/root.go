package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/pokedex-backend/internal/app"
	"github.com/heartmarshall/pokedex-backend/internal/config"
	"github.com/heartmarshall/pokedex-backend/internal/domain"
	"github.com/heartmarshall/pokedex-backend/internal/viewmodel"
)

// globalOptions are the flags shared by every subcommand.
type globalOptions struct {
	lang string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "pokedex",
		Short:         "Pokédex catalog server and command-line client",
		Version:       app.BuildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.lang, "lang", domain.DefaultLanguage, "display language (BCP 47)")

	root.AddCommand(
		newServeCmd(),
		newListCmd(opts),
		newShowCmd(opts),
		newFavoriteCmd(opts),
		newCreateCmd(opts),
		newEditCmd(opts),
		newDeleteCmd(opts),
		newRestoreCmd(opts),
		newResetCmd(opts),
	)
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return app.Run(cmd.Context(), cfg)
		},
	}
}

// withSession loads config, wires a Core and runs fn against a session in
// the requested language. The Core is closed when fn returns.
func withSession(cmd *cobra.Command, opts *globalOptions, fn func(ctx context.Context, core *app.Core, s *viewmodel.Session) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	core, err := app.NewCore(ctx, cfg, app.NewLogger(cfg.Log))
	if err != nil {
		return err
	}
	defer core.Close() //nolint:errcheck

	s := core.Session(domain.ViewQuery{})
	if err := s.SetLanguage(opts.lang); err != nil {
		return err
	}
	return fn(ctx, core, s)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
