package combine

import (
	"fmt"
	"strconv"

	"autosched-insights/internal/model"
)

// ValidationRules names the columns a parsed block must satisfy before it
// enters the combined dataset.
type ValidationRules struct {
	// RequiredColumns must exist in the block header.
	RequiredColumns []string
	// IntColumns must parse as integers where non-empty.
	IntColumns []string
	// BinaryColumns must be "0" or "1" where non-empty.
	BinaryColumns []string
}

// jsonRules apply to flattened JSON blocks. Parquet blocks arrive with
// source-defined columns, so only the filename-derived ones are enforced.
var jsonRules = ValidationRules{
	RequiredColumns: []string{"collection_frequency", "hourly_collection_plan_id"},
	IntColumns:      []string{"hourly_collection_plan_id", "ownerSequence"},
	BinaryColumns:   []string{"requests_count", "inputRequest_exists"},
}

var parquetRules = ValidationRules{
	RequiredColumns: []string{"file_collection_frequency", "file_hourly_collection_plan_id"},
	IntColumns:      []string{"file_hourly_collection_plan_id"},
}

// ValidateBlock checks one parsed block against the rules. The first
// violation aborts the combine run with a ParseError naming the file and
// row, or a SchemaError when a required column is missing entirely.
func ValidateBlock(block *Block, rules ValidationRules) error {
	index := make(map[string]int, len(block.Columns))
	for i, c := range block.Columns {
		if _, dup := index[c]; dup {
			return &model.SchemaError{File: block.File, Columns: []string{c}, Reason: "duplicate column"}
		}
		index[c] = i
	}

	for _, col := range rules.RequiredColumns {
		if _, ok := index[col]; !ok {
			return &model.SchemaError{File: block.File, Columns: []string{col}, Reason: "required column missing"}
		}
	}

	for _, col := range rules.IntColumns {
		ci, ok := index[col]
		if !ok {
			continue
		}
		for ri, cells := range block.Rows {
			v := cells[ci]
			if v == "" {
				continue
			}
			if _, err := strconv.Atoi(v); err != nil {
				return &model.ParseError{
					File: block.File,
					Row:  ri + 1,
					Err:  fmt.Errorf("column %s must be an integer, got %q", col, v),
				}
			}
		}
	}

	for _, col := range rules.BinaryColumns {
		ci, ok := index[col]
		if !ok {
			continue
		}
		for ri, cells := range block.Rows {
			v := cells[ci]
			if v == "" || v == "0" || v == "1" {
				continue
			}
			return &model.ParseError{
				File: block.File,
				Row:  ri + 1,
				Err:  fmt.Errorf("column %s must be 0 or 1, got %q", col, v),
			}
		}
	}

	return nil
}
