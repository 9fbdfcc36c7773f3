package model

import "fmt"

// RetrievalError reports a failed remote fetch. The stage aborts and the
// error is surfaced; nothing is silently skipped.
type RetrievalError struct {
	Bucket string
	Key    string
	Err    error
}

func (e *RetrievalError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("retrieval failed for s3://%s/%s: %v", e.Bucket, e.Key, e.Err)
	}
	return fmt.Sprintf("retrieval failed for s3://%s: %v", e.Bucket, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// ParseError reports a malformed source file or cell.
type ParseError struct {
	File string
	Row  int // 1-based data row, 0 when the whole file is unreadable
	Err  error
}

func (e *ParseError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("parse failed in %s row %d: %v", e.File, e.Row, e.Err)
	}
	return fmt.Sprintf("parse failed in %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SchemaError reports a column mismatch that cannot be reconciled by filling
// defaults, such as duplicate column names within one file.
type SchemaError struct {
	File    string
	Columns []string
	Reason  string
}

func (e *SchemaError) Error() string {
	if len(e.Columns) > 0 {
		return fmt.Sprintf("schema mismatch in %s (%v): %s", e.File, e.Columns, e.Reason)
	}
	return fmt.Sprintf("schema mismatch in %s: %s", e.File, e.Reason)
}

// RenderError reports a chart or report artifact that could not be produced.
type RenderError struct {
	Artifact string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render failed for %s: %v", e.Artifact, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
