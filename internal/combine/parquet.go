package combine

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"

	"autosched-insights/internal/model"
	"autosched-insights/pkg/utils"
)

// parquetFilePattern matches source filenames like Daily-17219.parquet.
var parquetFilePattern = regexp.MustCompile(`^([a-zA-Z]+)-(\d+)\.parquet$`)

// ParquetFileMeta parses the metadata encoded in a Parquet source filename.
func ParquetFileMeta(name string) (frequency, planID string, ok bool) {
	m := parquetFilePattern.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// ReadParquetFile reads a Parquet file with whatever columns it carries,
// rendering every value as a CSV cell string.
func ReadParquetFile(path string) (*Block, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &model.ParseError{File: path, Err: err}
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, &model.ParseError{File: path, Err: err}
	}

	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return nil, &model.ParseError{File: path, Err: err}
	}

	var columns []string
	for _, leaf := range pf.Schema().Columns() {
		columns = append(columns, strings.Join(leaf, "_"))
	}

	block := &Block{File: path, Columns: columns}
	for _, rg := range pf.RowGroups() {
		rows := rg.Rows()
		buf := make([]parquet.Row, 128)
		for {
			n, err := rows.ReadRows(buf)
			for _, r := range buf[:n] {
				cells := make([]string, len(columns))
				for _, v := range r {
					if ci := v.Column(); ci >= 0 && ci < len(cells) {
						cells[ci] = valueString(v)
					}
				}
				block.Rows = append(block.Rows, cells)
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				rows.Close()
				return nil, &model.ParseError{File: path, Err: err}
			}
			if n == 0 {
				break
			}
		}
		if err := rows.Close(); err != nil {
			return nil, &model.ParseError{File: path, Err: err}
		}
	}
	return block, nil
}

// ReadParquetSchema reads only the column names of a Parquet file.
func ReadParquetSchema(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &model.ParseError{File: path, Err: err}
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, &model.ParseError{File: path, Err: err}
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return nil, &model.ParseError{File: path, Err: err}
	}

	var columns []string
	for _, leaf := range pf.Schema().Columns() {
		columns = append(columns, strings.Join(leaf, "_"))
	}
	return columns, nil
}

// ParquetRowCount reads only the file footer to count rows.
func ParquetRowCount(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, &model.ParseError{File: path, Err: err}
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return 0, &model.ParseError{File: path, Err: err}
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return 0, &model.ParseError{File: path, Err: err}
	}
	return pf.NumRows(), nil
}

// WithFileMeta adds file_collection_frequency and
// file_hourly_collection_plan_id columns when the file does not already
// carry them.
func (b *Block) WithFileMeta(frequency, planID string) *Block {
	b.addConstantColumn("file_collection_frequency", frequency)
	b.addConstantColumn("file_hourly_collection_plan_id", planID)
	return b
}

func (b *Block) addConstantColumn(name, value string) {
	for _, c := range b.Columns {
		if c == name {
			return
		}
	}
	b.Columns = append(b.Columns, name)
	for i := range b.Rows {
		b.Rows[i] = append(b.Rows[i], value)
	}
}

func valueString(v parquet.Value) string {
	if v.IsNull() {
		return ""
	}
	switch v.Kind() {
	case parquet.Boolean:
		return strconv.FormatBool(v.Boolean())
	case parquet.Int32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case parquet.Int64:
		return strconv.FormatInt(v.Int64(), 10)
	case parquet.Float:
		return utils.FormatValue(float64(v.Float()))
	case parquet.Double:
		return utils.FormatValue(v.Double())
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return v.String()
	}
}
