package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/address-data-service/internal/domain"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed and inspect address documents",
}

var seedRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Seed cities from the Overpass city list",
	Long:  "Walks the Overpass city list in order and stores a document for every accepted city until --limit documents are stored.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var limit *int64
		if cmd.Flags().Changed("limit") {
			n, _ := cmd.Flags().GetInt64("limit")
			if n < 1 {
				return fmt.Errorf("--limit must be at least 1, got %d", n)
			}
			limit = &n
		}

		docs, err := deps.SeedingUC.RunSeeding(ctx, limit)
		if printErr := printDocuments(cmd, docs); printErr != nil {
			return printErr
		}
		if err != nil {
			return fmt.Errorf("seeding stopped after %d documents: %w", len(docs), err)
		}

		return nil
	},
}

var seedAddCmd = &cobra.Command{
	Use:   "add <areaId>",
	Short: "Add a single city by Overpass area id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		areaID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("area id must be an integer: %w", err)
		}

		doc, err := deps.SeedingUC.AddCity(ctx, areaID)
		if err != nil {
			return err
		}

		return printDocuments(cmd, []domain.SeededDocument{*doc})
	},
}

var seedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	RunE: func(cmd *cobra.Command, _ []string) error {
		docs, err := deps.Documents.GetAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("list documents: %w", err)
		}

		return printDocuments(cmd, docs)
	},
}

func init() {
	seedRunCmd.Flags().Int64("limit", 0, "maximum number of documents to store (default: no limit)")
	seedCmd.PersistentFlags().Bool("json", false, "print documents as JSON")

	seedCmd.AddCommand(seedRunCmd, seedAddCmd, seedListCmd)
	rootCmd.AddCommand(seedCmd)
}

func printDocuments(cmd *cobra.Command, docs []domain.SeededDocument) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	return writeDocuments(cmd.OutOrStdout(), docs, asJSON)
}

func writeDocuments(w io.Writer, docs []domain.SeededDocument, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	}

	for _, d := range docs {
		areaID := "-"
		if d.AreaID != nil {
			areaID = strconv.FormatInt(*d.AreaID, 10)
		}
		if _, err := fmt.Fprintf(w, "%-12s %-30s %-30s %-30s %d\n", areaID, d.Country, d.State, d.City, d.Size); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Total documents: %d\n", len(docs))
	return err
}
