package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	appsvc "path2prevention/internal/app"
	"path2prevention/internal/bootstrap"
	"path2prevention/internal/search"
	"path2prevention/internal/transport/mcpserver"
)

// --- maintenance ---

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the relational program tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(app *bootstrap.App) error {
			tables, err := app.Services.Maintenance.InitDB(cmd.Context())
			if err != nil {
				return fmt.Errorf("initialize database: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created tables: %s\n", strings.Join(tables, ", "))
			return nil
		})
	},
}

var populateCmd = &cobra.Command{
	Use:   "populate",
	Short: "Insert the sample program catalogue",
	Long: `Insert the sample program catalogue.

Running it twice inserts the samples twice.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(app *bootstrap.App) error {
			n, err := app.Services.Maintenance.PopulateSampleData(cmd.Context())
			if err != nil {
				return fmt.Errorf("populate sample data after %d rows: %w", n, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inserted %d sample programs\n", n)
			return nil
		})
	},
}

var initVectorCmd = &cobra.Command{
	Use:   "init-vector",
	Short: "Enable pgvector and create the programs_vector table",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(app *bootstrap.App) error {
			if err := app.Services.Maintenance.InitVectorStore(cmd.Context()); err != nil {
				return fmt.Errorf("initialize vector store: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "vector store ready")
			return nil
		})
	},
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Embed every program and refresh programs_vector",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(app *bootstrap.App) error {
			report, err := app.Services.Index.Reindex(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show vector index statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(app *bootstrap.App) error {
			stats, err := app.Services.Semantic.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("load vector stats: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), stats)
		})
	},
}

// --- search ---

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search programs by location or delivery mode",
	Long: `Search programs by location or delivery mode.

Examples:
  p2pctl search --state GA --city Atlanta
  p2pctl search --mode virtual`,
	RunE: func(cmd *cobra.Command, args []string) error {
		state, _ := cmd.Flags().GetString("state")
		city, _ := cmd.Flags().GetString("city")
		zip, _ := cmd.Flags().GetString("zip")
		mode, _ := cmd.Flags().GetString("mode")
		radius, _ := cmd.Flags().GetInt("radius")

		f := search.Filter{State: state, City: city, ZipCode: zip, DeliveryMode: mode, Radius: radius}
		if !f.Normalize().HasLocation() && strings.TrimSpace(mode) == "" {
			return fmt.Errorf("one of --state, --city, --zip or --mode is required")
		}

		return withApp(cmd.Context(), func(app *bootstrap.App) error {
			list, err := app.Services.Programs.Search(cmd.Context(), f)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"count":          len(list.Programs),
				"fallback":       list.Fallback,
				"searchCriteria": list.Criteria,
				"programs":       list.Programs,
			})
		})
	},
}

var semanticCmd = &cobra.Command{
	Use:   "semantic <query>",
	Short: "Rank programs against a free-text query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		query := strings.Join(args, " ")

		return withApp(cmd.Context(), func(app *bootstrap.App) error {
			res, err := app.Services.Semantic.Search(cmd.Context(), appsvc.SemanticInput{Query: query, Limit: limit})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"query":           res.Query,
				"intent_analysis": res.Intent,
				"fallback":        res.Fallback,
				"results":         res.Results,
			})
		})
	},
}

// --- mcp ---

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve program search as MCP tools over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(app *bootstrap.App) error {
			s := mcpserver.NewServer(mcpserver.Deps{
				Programs: app.Services.Programs,
				Semantic: app.Services.Semantic,
			}, version)
			return mcpserver.ServeStdio(s)
		})
	},
}

func init() {
	searchCmd.Flags().String("state", "", "two-letter state code")
	searchCmd.Flags().String("city", "", "city name")
	searchCmd.Flags().String("zip", "", "ZIP code")
	searchCmd.Flags().String("mode", "", "delivery mode (in-person, virtual, hybrid, ...)")
	searchCmd.Flags().Int("radius", 0, "radius in miles, echoed back only")

	semanticCmd.Flags().Int("limit", 0, "maximum results")

	rootCmd.AddCommand(initDBCmd, populateCmd, initVectorCmd, indexCmd, statsCmd, searchCmd, semanticCmd, mcpCmd)
}
