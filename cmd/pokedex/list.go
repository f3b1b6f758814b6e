package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/pokedex-backend/internal/app"
	"github.com/heartmarshall/pokedex-backend/internal/domain"
	"github.com/heartmarshall/pokedex-backend/internal/viewmodel"
)

type listOptions struct {
	typ       string
	search    string
	sort      string
	page      int
	favorites bool
	enrich    bool
}

func newListCmd(g *globalOptions) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of the catalog list view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, g, func(ctx context.Context, core *app.Core, s *viewmodel.Session) error {
				if err := applyListOptions(s, opts); err != nil {
					return err
				}

				if opts.enrich {
					// Enrichment replaces backend paging; partial results are still printed.
					if err := core.Enrichment.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
						core.Log.Warn("enrichment stopped", slog.String("error", err.Error()))
					}
				} else if err := core.Catalog.EnsurePage(ctx, opts.page); err != nil {
					core.Log.Warn("backend page unavailable", slog.String("error", err.Error()))
				}

				lv := s.List()
				lv.Pagination.PageSize = core.Catalog.PageSize()
				return printJSON(cmd.OutOrStdout(), lv)
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.typ, "type", "", "only records of this type")
	f.StringVar(&opts.search, "search", "", "match exact id, name or localized name")
	f.StringVar(&opts.sort, "sort", string(domain.SortNone), "none, stats-asc, stats-desc or name")
	f.IntVar(&opts.page, "page", 1, "page number (1-based)")
	f.BoolVar(&opts.favorites, "favorites", false, "only favorites")
	f.BoolVar(&opts.enrich, "enrich", false, "run the full enrichment sequence before listing")
	return cmd
}

func applyListOptions(s *viewmodel.Session, opts *listOptions) error {
	if err := s.SetSort(domain.SortMode(opts.sort)); err != nil {
		return err
	}
	s.SetFilter(opts.typ)
	s.SetSearch(opts.search)
	s.SetFavoritesOnly(opts.favorites)
	return s.SetPage(opts.page)
}
