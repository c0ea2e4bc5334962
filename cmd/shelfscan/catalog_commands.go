package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"shelfscan/internal/catalog"
	"shelfscan/internal/config"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse and manage the local movie catalog",
	}

	catalogCmd.AddCommand(newCatalogListCommand(ctx))
	catalogCmd.AddCommand(newCatalogSearchCommand(ctx))
	catalogCmd.AddCommand(newCatalogShowCommand(ctx))
	catalogCmd.AddCommand(newCatalogDeleteCommand(ctx))
	catalogCmd.AddCommand(newCatalogStatsCommand(ctx))

	return catalogCmd
}

func newCatalogListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all catalogued movies sorted by title",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				records, err := store.ListAllSortedByTitle(cmd.Context())
				if err != nil {
					return err
				}
				printRecordTable(cmd.OutOrStdout(), records)
				return nil
			})
		},
	}
}

func newCatalogSearchCommand(ctx *commandContext) *cobra.Command {
	var byCast bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the catalog by title or cast member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				var records []*catalog.Record
				var err error
				if byCast {
					records, err = store.SearchByCast(cmd.Context(), args[0])
				} else {
					records, err = store.SearchByTitle(cmd.Context(), args[0])
				}
				if err != nil {
					return err
				}
				printRecordTable(cmd.OutOrStdout(), records)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&byCast, "cast", false, "Match against cast members instead of titles")
	return cmd
}

func newCatalogShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id-or-code>",
		Short: "Show full details for one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				record, err := findRecord(cmd, store, args[0])
				if err != nil {
					return err
				}
				printRecordDetail(cmd.OutOrStdout(), record)
				return nil
			})
		},
	}
}

func newCatalogDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id-or-code>",
		Short: "Remove a record from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				record, err := findRecord(cmd, store, args[0])
				if err != nil {
					return err
				}
				if err := store.Delete(cmd.Context(), record.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q (%s)\n", record.Title, record.ID)
				return nil
			})
		},
	}
}

func newCatalogStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show catalog totals and genre breakdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Movies: %d\n", stats.Total)
				if len(stats.Genres) == 0 {
					return nil
				}

				genres := make([]string, 0, len(stats.Genres))
				for genre := range stats.Genres {
					genres = append(genres, genre)
				}
				sort.Slice(genres, func(i, j int) bool {
					if stats.Genres[genres[i]] != stats.Genres[genres[j]] {
						return stats.Genres[genres[i]] > stats.Genres[genres[j]]
					}
					return genres[i] < genres[j]
				})

				rows := make([][]string, 0, len(genres))
				for _, genre := range genres {
					rows = append(rows, []string{genre, strconv.Itoa(stats.Genres[genre])})
				}
				fmt.Fprintln(out, renderTable([]string{"Genre", "Count"}, rows, 1))
				return nil
			})
		},
	}
}

// findRecord resolves an argument as a record ID first, then a scan code.
func findRecord(cmd *cobra.Command, store *catalog.Store, key string) (*catalog.Record, error) {
	record, err := store.GetByID(cmd.Context(), key)
	if err != nil {
		return nil, err
	}
	if record == nil {
		record, err = store.GetByCode(cmd.Context(), key)
		if err != nil {
			return nil, err
		}
	}
	if record == nil {
		return nil, fmt.Errorf("no record with id or code %q", key)
	}
	return record, nil
}

func printRecordTable(out io.Writer, records []*catalog.Record) {
	if len(records) == 0 {
		fmt.Fprintln(out, "No movies in the catalog.")
		return
	}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			record.Title,
			releaseYear(record.ReleaseDate),
			record.Director,
			record.Rating,
			record.ScanCode,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Title", "Year", "Director", "Rating", "Code"},
		rows,
	))
}

func printRecordDetail(out io.Writer, record *catalog.Record) {
	fmt.Fprintf(out, "Title:     %s\n", record.Title)
	fmt.Fprintf(out, "Released:  %s\n", orDash(record.ReleaseDate))
	fmt.Fprintf(out, "Director:  %s\n", orDash(record.Director))
	fmt.Fprintf(out, "Rating:    %s\n", orDash(record.Rating))
	if record.RuntimeMinutes > 0 {
		fmt.Fprintf(out, "Runtime:   %d min\n", record.RuntimeMinutes)
	}
	fmt.Fprintf(out, "Genres:    %s\n", orDash(strings.Join(record.Genres, ", ")))
	fmt.Fprintf(out, "Cast:      %s\n", orDash(strings.Join(record.Cast, ", ")))
	fmt.Fprintf(out, "Code:      %s\n", orDash(record.ScanCode))
	if record.Overview != "" {
		fmt.Fprintf(out, "Overview:  %s\n", record.Overview)
	}
	fmt.Fprintf(out, "ID:        %s\n", record.ID)
	fmt.Fprintf(out, "Added:     %s\n", record.AddedAt.Local().Format("2006-01-02 15:04"))
}

func releaseYear(date string) string {
	if len(date) >= 4 {
		return date[:4]
	}
	return ""
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
