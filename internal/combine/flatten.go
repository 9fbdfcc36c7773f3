package combine

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"autosched-insights/internal/model"
	"autosched-insights/pkg/utils"
)

// jsonFilePattern extracts the collection frequency and plan ID from source
// filenames like adhoc-438.json or Daily-17219.json.gz.
var jsonFilePattern = regexp.MustCompile(`^([a-zA-Z]+)-(\d+)\.json(\.gz)?$`)

// FileMeta parses the metadata encoded in a JSON source filename.
func FileMeta(name string) (frequency, planID string, ok bool) {
	m := jsonFilePattern.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// Block is the parsed contents of one source file: its column list in
// first-observation order and its rows aligned to those columns.
type Block struct {
	File    string
	Columns []string
	Rows    [][]string
}

// colSet tracks column names in first-observation order.
type colSet struct {
	names []string
	index map[string]int
}

func newColSet() *colSet {
	return &colSet{index: make(map[string]int)}
}

func (c *colSet) add(name string) {
	if _, ok := c.index[name]; ok {
		return
	}
	c.index[name] = len(c.names)
	c.names = append(c.names, name)
}

// row is one flattened output row; writes register the column with the
// shared colSet so the file-level column order is the observation order.
type row struct {
	cols  *colSet
	cells map[string]string
}

func newRow(cols *colSet) row {
	return row{cols: cols, cells: make(map[string]string)}
}

func (r row) set(name, val string) {
	r.cols.add(name)
	r.cells[name] = val
}

func (r row) clone() row {
	out := newRow(r.cols)
	for k, v := range r.cells {
		out.cells[k] = v
	}
	return out
}

// ownerPlaceholders are the owner-level columns emitted (empty) for entries
// with no request owners, so files group into one schema regardless of
// owner presence.
var ownerPlaceholders = []string{
	"customerCollection_id",
	"customerCollection_customer",
	"customerCollection_name",
	"customerCollection_frequency",
	"customerCollection_earliestStartTime",
	"customerCollection_expectedDeliveryTime",
	"customerCollection_hints",
	"customerCollection_status",
	"customerCollection_customerPackagingId",
	"input_filename",
	"input_reference",
}

// FlattenFile parses one plain-JSON source file into a Block, one output row
// per request owner (or one placeholder row for ownerless entries).
func FlattenFile(path string) (*Block, error) {
	frequency, planID, ok := FileMeta(path)
	if !ok {
		return nil, &model.ParseError{File: path, Err: errBadName}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &model.ParseError{File: path, Err: err}
	}

	var entries []map[string]interface{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &model.ParseError{File: path, Err: err}
	}

	cols := newColSet()
	var rows []row
	for _, entry := range entries {
		rows = append(rows, flattenEntry(cols, entry, frequency, planID)...)
	}

	block := &Block{File: path, Columns: cols.names}
	for _, r := range rows {
		cells := make([]string, len(cols.names))
		for i, name := range cols.names {
			cells[i] = r.cells[name]
		}
		block.Rows = append(block.Rows, cells)
	}
	return block, nil
}

var errBadName = errors.New("filename does not match <frequency>-<planID>.json")

// flattenEntry expands one scheduling entry into rows. Dynamic map keys are
// visited in sorted order so the emitted column order is deterministic.
func flattenEntry(cols *colSet, entry map[string]interface{}, frequency, planID string) []row {
	base := newRow(cols)
	base.set("collection_frequency", frequency)
	base.set("hourly_collection_plan_id", planID)

	if psc, ok := entry["providerSiteCode"].(map[string]interface{}); ok {
		base.set("provider", utils.FormatValue(psc["x"]))
		base.set("site", utils.FormatValue(psc["y"]))
		for _, k := range sortedKeys(psc) {
			if k == "x" || k == "y" {
				continue
			}
			base.set("providerSiteCode_"+k, utils.FormatValue(psc[k]))
		}
	}

	if sh, ok := entry["siteHierarchy"].(map[string]interface{}); ok {
		base.set("siteHierarchy_customer", utils.FormatValue(sh["customer"]))
		base.set("siteHierarchy_customerSiteCode", utils.FormatValue(sh["customerSiteCode"]))
		base.set("siteHierarchy_priority", utils.FormatValue(sh["priority"]))
	}

	if _, ok := entry["request"]; ok {
		base.set("requests_count", "1")
	} else {
		base.set("requests_count", "0")
	}
	base.set("enrichment_request_count", "0")

	if tb, ok := entry["timeBox"].(map[string]interface{}); ok {
		setNested(base, "timeBox_", tb)
	}

	owners, _ := entry["requestOwners"].([]interface{})
	if len(owners) == 0 {
		r := base.clone()
		r.set("ownerSequence", "1")
		for _, name := range ownerPlaceholders {
			r.set(name, "")
		}
		r.set("inputRequest_exists", "0")
		return []row{r}
	}

	out := make([]row, 0, len(owners))
	for i, o := range owners {
		owner, _ := o.(map[string]interface{})
		r := base.clone()
		r.set("ownerSequence", strconv.Itoa(i+1))

		if cc, ok := owner["customerCollection"].(map[string]interface{}); ok {
			for _, k := range sortedKeys(cc) {
				r.set("customerCollection_"+k, utils.FormatValue(cc[k]))
			}
		}

		input, _ := owner["input"].(map[string]interface{})
		r.set("input_filename", utils.FormatValue(input["name"]))
		if ref, ok := input["reference"]; ok && ref != nil {
			r.set("input_reference", utils.FormatValue(ref))
		} else {
			r.set("input_reference", utils.FormatValue(input["id"]))
		}

		if req, ok := owner["inputRequest"]; ok && req != nil {
			r.set("inputRequest_exists", "1")
		} else {
			r.set("inputRequest_exists", "0")
		}

		if tb, ok := owner["timeBox"].(map[string]interface{}); ok {
			setNested(r, "timebox_", tb)
		}

		out = append(out, r)
	}
	return out
}

// setNested writes a one-level-nested map: scalar values become
// <prefix><key>, nested maps become <prefix><key>_<subkey>.
func setNested(r row, prefix string, m map[string]interface{}) {
	for _, k := range sortedKeys(m) {
		if sub, ok := m[k].(map[string]interface{}); ok {
			for _, sk := range sortedKeys(sub) {
				r.set(prefix+k+"_"+sk, utils.FormatValue(sub[sk]))
			}
			continue
		}
		r.set(prefix+k, utils.FormatValue(m[k]))
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
