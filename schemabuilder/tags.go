package schemabuilder

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warpstreamlabs/avroregistry/schema"
)

// tagOptions is the parsed form of an `avro:"..."` struct tag, in the same
// comma-separated-option shape as kaptinlin-jsonschema/pkg/tagparser's
// `jsonschema` tag (adapted to parse `avro` tags and this package's token
// set instead).
type tagOptions struct {
	Name     string
	Excluded bool
	HasOrder bool
	Order    int
	Default  schema.Default
	HasRange bool
	Min, Max decimal.Decimal
}

// parseAvroTag parses the value of a struct field's `avro` tag. An absent
// tag is equivalent to an empty tagOptions (no override, no exclusion).
func parseAvroTag(tag string) (tagOptions, error) {
	var opts tagOptions
	if tag == "" {
		return opts, nil
	}
	parts := strings.Split(tag, ",")
	if parts[0] == "-" {
		opts.Excluded = true
		return opts, nil
	}
	opts.Name = parts[0]

	var haveMin, haveMax bool
	for _, part := range parts[1:] {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		switch key {
		case "default":
			var v any
			if err := json.Unmarshal([]byte(value), &v); err != nil {
				v = value // bare (unquoted) literal, e.g. default=true on a non-JSON-aware tag
			}
			opts.Default = schema.NewDefault(v)
		case "order":
			n, err := strconv.Atoi(value)
			if err != nil {
				return tagOptions{}, err
			}
			opts.HasOrder = true
			opts.Order = n
		case "min":
			d, err := decimal.NewFromString(value)
			if err != nil {
				return tagOptions{}, err
			}
			opts.Min = d
			haveMin = true
		case "max":
			d, err := decimal.NewFromString(value)
			if err != nil {
				return tagOptions{}, err
			}
			opts.Max = d
			haveMax = true
		}
	}
	opts.HasRange = haveMin && haveMax
	return opts, nil
}

// decimalDigits reports the whole-part and fractional-part digit counts of
// d, used by the range-narrowing precision/scale derivation.
func decimalDigits(d decimal.Decimal) (whole, frac int) {
	abs := d.Abs()
	frac = int(-abs.Exponent())
	if frac < 0 {
		frac = 0
	}
	digits := strings.TrimLeft(abs.Truncate(0).Coefficient().String(), "-0")
	whole = len(digits)
	if whole == 0 {
		whole = 1
	}
	return whole, frac
}

func fieldName(sf reflect.StructField, opts tagOptions) string {
	if opts.Name != "" {
		return opts.Name
	}
	return sf.Name
}
