package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/noah-isme/coloringbook-api/internal/database"
	"github.com/noah-isme/coloringbook-api/internal/dto"
)

func newMigrateCmd(env *adminEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.AutoMigrate(env.db); err != nil {
				return err
			}
			env.logger.Info().Str("driver", env.cfg.DatabaseDriver).Msg("schema migrated")
			return nil
		},
	}
}

func newSeedCmd(env *adminEnv) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load colors, drawings, pages and surveys from a catalog JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read catalog: %w", err)
			}

			var req dto.CatalogSeedRequest
			if err := json.Unmarshal(data, &req); err != nil {
				return fmt.Errorf("decode catalog %s: %w", file, err)
			}

			counts, err := env.seedService().SeedCatalog(cmd.Context(), "", req)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "languages: %d\nsounds: %d\ncolors: %d\ndrawings: %d\nareas: %d\npages: %d\nexpectations: %d\nsurveys: %d\n",
				counts.Languages, counts.Sounds, counts.Colors, counts.Drawings, counts.Areas, counts.Pages, counts.Expectations, counts.Surveys)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog JSON file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newExportCmd(env *adminEnv) *cobra.Command {
	var out string

	export := &cobra.Command{
		Use:   "export",
		Short: "Write survey results or fill data as semicolon separated CSV",
	}
	export.PersistentFlags().StringVarP(&out, "out", "o", "", "output file (default stdout)")

	var (
		survey string
		asJSON bool
	)
	results := &cobra.Command{
		Use:   "results",
		Short: "Per-subject evaluation of one survey",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := env.exportService()
			if asJSON {
				summaries, err := svc.SurveyResults(cmd.Context(), survey)
				if err != nil {
					return err
				}
				return writeOutput(cmd, out, func(w io.Writer) error {
					encoder := json.NewEncoder(w)
					encoder.SetIndent("", "  ")
					return encoder.Encode(summaries)
				})
			}

			data, err := svc.SurveyResultsCSV(cmd.Context(), survey)
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			})
		},
	}
	results.Flags().StringVarP(&survey, "survey", "s", "", "survey name")
	results.Flags().BoolVar(&asJSON, "json", false, "write JSON instead of CSV")
	_ = results.MarkFlagRequired("survey")

	var (
		fillSurvey string
		finalOnly  bool
	)
	fills := &cobra.Command{
		Use:   "fills",
		Short: "Stored fills, optionally only the last fill per area",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := env.exportService().FillsCSV(cmd.Context(), fillSurvey, finalOnly)
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			})
		},
	}
	fills.Flags().StringVarP(&fillSurvey, "survey", "s", "", "limit to one survey")
	fills.Flags().BoolVar(&finalOnly, "final", false, "keep only the last fill of every area")

	export.AddCommand(results, fills)
	return export
}

func writeOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(cmd.OutOrStdout())
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
