package extract

import (
	"context"
	"fmt"

	"github.com/BartekS5/ods14/pkg/logger"
	"github.com/BartekS5/ods14/pkg/models"
)

// CSVExtractor reads the microplastics and species extracts from local
// files or S3.
type CSVExtractor struct {
	MicroplasticsSource string
	SpeciesSource       string
	Encoding            string
	// HeaderRenames maps raw header text to the canonical column name.
	HeaderRenames map[string]string

	opener *Opener
}

// NewCSVExtractor returns an extractor opening sources through opener.
func NewCSVExtractor(micro, species, encoding string, renames map[string]string, opener *Opener) *CSVExtractor {
	if opener == nil {
		opener = NewOpener(S3Options{})
	}
	return &CSVExtractor{
		MicroplasticsSource: micro,
		SpeciesSource:       species,
		Encoding:            encoding,
		HeaderRenames:       renames,
		opener:              opener,
	}
}

// Extract reads both tables.
func (e *CSVExtractor) Extract(ctx context.Context) (micro, species *models.Table, err error) {
	micro, err = e.read(ctx, "microplastics", e.MicroplasticsSource)
	if err != nil {
		return nil, nil, err
	}
	species, err = e.read(ctx, "species", e.SpeciesSource)
	if err != nil {
		return nil, nil, err
	}
	return micro, species, nil
}

func (e *CSVExtractor) read(ctx context.Context, name, src string) (*models.Table, error) {
	rc, err := e.opener.Open(ctx, src)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	t, err := ReadCSV(ctx, rc, name, e.Encoding)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", src, err)
	}
	t.Rename(e.HeaderRenames)
	logger.Infof("Extracted %d %s rows (%d columns) from %s", len(t.Rows), name, len(t.Columns), src)
	return t, nil
}
