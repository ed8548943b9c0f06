package app

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

// WriteDocument persists the merged document to the configured markdown file
// and, when a PDF path is set, renders a PDF alongside it.
func (a *App) WriteDocument(doc string) error {
	out := a.cfg.OutputPath
	if out == "" {
		out = "results.md"
	}
	if err := os.WriteFile(out, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	log.Info().Str("out", out).Msg("wrote document")

	if a.cfg.PDFPath != "" {
		if err := writeSimplePDF(doc, a.cfg.PDFPath); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		log.Info().Str("out", a.cfg.PDFPath).Msg("wrote PDF")
	}
	return nil
}
