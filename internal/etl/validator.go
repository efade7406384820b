package etl

import (
	"errors"
	"fmt"

	"github.com/BartekS5/ods14/pkg/models"
)

// ErrIntegrity is returned when a bundle breaks a star schema constraint.
var ErrIntegrity = errors.New("star schema integrity violation")

// Validator checks a transform bundle before it reaches the store.
type Validator struct {
	// NonNull lists fact columns that must never be NULL, per table.
	NonNull map[string][]string
}

// NewValidator returns a Validator requiring every microplastics fact to
// carry a region.
func NewValidator() *Validator {
	return &Validator{NonNull: map[string][]string{models.FactMicro: {"region_id"}}}
}

// Validate checks primary key uniqueness, foreign key targets and the
// configured non-null columns. Tables must be in load order.
func (v *Validator) Validate(tables []models.TableData) error {
	keys := make(map[string]map[any]struct{}, len(tables))
	for _, td := range tables {
		s := td.Schema
		pk := -1
		if !s.AutoKey {
			pk = columnIndex(s, s.PrimaryKey)
		}
		if pk >= 0 {
			seen := make(map[any]struct{}, len(td.Rows))
			for _, row := range td.Rows {
				if _, dup := seen[row[pk]]; dup {
					return fmt.Errorf("%w: %s duplicate %s %v", ErrIntegrity, s.Name, s.PrimaryKey, row[pk])
				}
				seen[row[pk]] = struct{}{}
			}
			keys[s.Name] = seen
		}

		for ci, c := range s.Columns {
			if c.References == "" {
				continue
			}
			parent, ok := keys[c.References]
			if !ok {
				return fmt.Errorf("%w: %s loads before %s", ErrIntegrity, s.Name, c.References)
			}
			for i, row := range td.Rows {
				if row[ci] == nil {
					continue
				}
				if _, ok := parent[row[ci]]; !ok {
					return fmt.Errorf("%w: %s row %d: %s=%v has no %s row", ErrIntegrity, s.Name, i+1, c.Name, row[ci], c.References)
				}
			}
		}

		for _, col := range v.NonNull[s.Name] {
			ci := columnIndex(s, col)
			if ci < 0 {
				continue
			}
			for i, row := range td.Rows {
				if row[ci] == nil {
					return fmt.Errorf("%w: %s row %d: %s is NULL", ErrIntegrity, s.Name, i+1, col)
				}
			}
		}
	}
	return nil
}

func columnIndex(s models.TableSchema, name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}
