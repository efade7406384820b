package etl

import (
	"context"

	"github.com/BartekS5/ods14/pkg/models"
)

// Extractor supplies the two raw survey tables.
type Extractor interface {
	Extract(ctx context.Context) (micro, species *models.Table, err error)
}

// Loader persists star schema tables, given in load order.
type Loader interface {
	Load(ctx context.Context, tables []models.TableData) error
}
