package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// naMarkers are cell texts treated as missing values.
var naMarkers = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// Load reads a comma separated file with a header row. When enc is nil input
// is expected to be UTF-8, a byte order mark is honored either way.
func Load(path string, enc encoding.Encoding) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open table: %w", err)
	}
	defer f.Close()

	var fallback transform.Transformer = transform.Nop
	if enc != nil {
		fallback = enc.NewDecoder()
	}
	t, err := Read(transform.NewReader(f, unicode.BOMOverride(fallback)))
	if err != nil {
		return nil, fmt.Errorf("unable to read table %q: %w", path, err)
	}
	return t, nil
}

// Read parses comma separated text with a header row and infers cell types
// per column.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("missing header row")
		}
		return nil, err
	}

	var records [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	rows := make([][]Value, len(records))
	for i := range rows {
		rows[i] = make([]Value, len(header))
	}
	for col := range header {
		cells := make([]string, len(records))
		for i, rec := range records {
			cells[i] = rec[col]
		}
		for i, v := range inferColumn(cells) {
			rows[i][col] = v
		}
	}
	return New(header, rows)
}

// inferColumn converts cells of one column to the narrowest kind which fits
// all of them: int (no missing values allowed), float, then string. Numbers
// are decimal only, hexadecimal forms accepted by strconv stay strings.
func inferColumn(cells []string) []Value {
	var (
		nulls    int
		allInt   = true
		allFloat = true
	)
	for _, c := range cells {
		if isNA(c) {
			nulls++
			continue
		}
		if _, err := strconv.ParseInt(c, 10, 64); err != nil {
			allInt = false
		}
		if _, ok := parseDecimal(c); !ok {
			allFloat = false
		}
	}

	out := make([]Value, len(cells))
	for i, c := range cells {
		if isNA(c) {
			out[i] = NullValue()
			continue
		}
		switch {
		case allInt && nulls == 0:
			n, _ := strconv.ParseInt(c, 10, 64)
			out[i] = IntValue(n)
		case allFloat:
			f, _ := parseDecimal(c)
			out[i] = FloatValue(f)
		default:
			out[i] = StringValue(c)
		}
	}
	return out
}

func parseDecimal(cell string) (float64, bool) {
	if strings.ContainsAny(cell, "xX_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(cell, 64)
	return f, err == nil
}

func isNA(cell string) bool {
	_, ok := naMarkers[cell]
	return ok
}
