package main

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/swelljoe/wthrq/internal/db"
)

func newImportPlacesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import-places <gazetteer.txt|gazetteer.zip>",
		Short: "Load a Census Gazetteer places file into the local database",
		Long: `import-places loads the Census Bureau national places Gazetteer
(2023_Gaz_place_national.txt, or the zip it is distributed in) into the
sqlite database at DB_PATH, for use with TARGET PLACES.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return importPlaces(cmd, opts, args[0])
		},
	}
}

func importPlaces(cmd *cobra.Command, opts *options, src string) error {
	cfg, log, err := setup(cmd, opts)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create data dir: %w", err)
		}
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer database.Close()

	r, closeSrc, err := openGazetteer(src)
	if err != nil {
		return err
	}
	defer closeSrc()

	log.Info().Str("source", src).Str("db", cfg.DBPath).Msg("importing places")
	count, err := database.ImportPlaces(r, log)
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", src, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d places into %s\n", count, cfg.DBPath)
	return nil
}

// openGazetteer opens a plain gazetteer file, or the first .txt member of a
// zip archive.
func openGazetteer(path string) (io.Reader, func(), error) {
	if !strings.HasSuffix(strings.ToLower(path), ".zip") {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return f, func() { f.Close() }, nil
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, nil, err
	}
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, ".txt") {
			rc, err := f.Open()
			if err != nil {
				zr.Close()
				return nil, nil, err
			}
			return rc, func() {
				rc.Close()
				zr.Close()
			}, nil
		}
	}
	zr.Close()
	return nil, nil, fmt.Errorf("no txt file found in %s", path)
}
