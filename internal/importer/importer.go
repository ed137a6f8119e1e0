package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"dealership/internal/domain"
	"github.com/shopspring/decimal"
)

// Record types in the first CSV column.
const (
	RecordVariant   = "variant"
	RecordOption    = "option"
	RecordAccessory = "accessory"
)

type VariantWriter interface {
	Upsert(ctx context.Context, v domain.VehicleVariant) (*domain.VehicleVariant, error)
}

type OptionWriter interface {
	Upsert(ctx context.Context, o domain.OptionItem) (*domain.OptionItem, error)
}

type AccessoryWriter interface {
	Upsert(ctx context.Context, a domain.Accessory) (*domain.Accessory, error)
}

// Writers receive imported records. A nil writer rejects rows of its type.
type Writers struct {
	Variants    VariantWriter
	Options     OptionWriter
	Accessories AccessoryWriter
}

// Result counts upserted records per type.
type Result struct {
	Variants    int
	Options     int
	Accessories int
}

func (r Result) Total() int {
	return r.Variants + r.Options + r.Accessories
}

// CSVImporter reads a catalog export and upserts variants, options and
// accessories. Rows with an empty type and only a photo add that photo to
// the preceding variant.
type CSVImporter struct {
	reader  *csv.Reader
	writers Writers
}

func NewCSVImporter(r io.Reader, writers Writers) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{reader: csvr, writers: writers}
}

// Run parses every row. It stops at the first invalid row; records before it
// stay imported.
func (i *CSVImporter) Run(ctx context.Context) (Result, error) {
	var res Result

	headers, err := i.reader.Read()
	if err != nil {
		return res, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var (
		current *domain.VehicleVariant
		line    = 1
	)
	flush := func() error {
		if current == nil {
			return nil
		}
		v := *current
		current = nil
		if i.writers.Variants == nil {
			return errors.New("variant rows present but no variant writer configured")
		}
		if _, err := i.writers.Variants.Upsert(ctx, v); err != nil {
			return fmt.Errorf("upsert variant %q: %w", v.Name, err)
		}
		res.Variants++
		return nil
	}

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read row: %w", err)
		}
		line++
		row := rowReader{record: record, index: index}

		switch kind := strings.ToLower(row.get("type")); kind {
		case "":
			if photo := row.get("photo"); photo != "" && current != nil {
				current.Photos = append(current.Photos, photo)
			}
		case RecordVariant:
			if err := flush(); err != nil {
				return res, err
			}
			v, err := parseVariant(row)
			if err != nil {
				return res, fmt.Errorf("line %d: %w", line, err)
			}
			current = &v
		case RecordOption:
			if err := flush(); err != nil {
				return res, err
			}
			if err := i.saveOption(ctx, row, line); err != nil {
				return res, err
			}
			res.Options++
		case RecordAccessory:
			if err := flush(); err != nil {
				return res, err
			}
			if err := i.saveAccessory(ctx, row, line); err != nil {
				return res, err
			}
			res.Accessories++
		default:
			return res, fmt.Errorf("line %d: unknown record type %q", line, kind)
		}
	}

	if err := flush(); err != nil {
		return res, err
	}
	return res, nil
}

func (i *CSVImporter) saveOption(ctx context.Context, row rowReader, line int) error {
	if i.writers.Options == nil {
		return fmt.Errorf("line %d: no option writer configured", line)
	}
	o, err := parseOption(row)
	if err != nil {
		return fmt.Errorf("line %d: %w", line, err)
	}
	if _, err := i.writers.Options.Upsert(ctx, o); err != nil {
		return fmt.Errorf("upsert option %q: %w", o.Label, err)
	}
	return nil
}

func (i *CSVImporter) saveAccessory(ctx context.Context, row rowReader, line int) error {
	if i.writers.Accessories == nil {
		return fmt.Errorf("line %d: no accessory writer configured", line)
	}
	a, err := parseAccessory(row)
	if err != nil {
		return fmt.Errorf("line %d: %w", line, err)
	}
	if _, err := i.writers.Accessories.Upsert(ctx, a); err != nil {
		return fmt.Errorf("upsert accessory %q: %w", a.Name, err)
	}
	return nil
}

func parseVariant(row rowReader) (domain.VehicleVariant, error) {
	var errs []error
	v := domain.VehicleVariant{
		Model:     row.get("model"),
		Name:      row.get("name"),
		BodyType:  strings.ToLower(row.get("body_type")),
		Condition: strings.ToLower(row.get("condition")),
		BasePrice: row.money("base_price", &errs),
		Performance: domain.Performance{
			PowerHP:          row.integer("power_hp", &errs),
			TorqueNm:         row.integer("torque_nm", &errs),
			Acceleration0100: row.money("acceleration_0_100", &errs),
			TopSpeedKmh:      row.integer("top_speed_kmh", &errs),
			ConsumptionL100:  row.money("consumption_l100", &errs),
		},
	}
	if v.Condition == "" {
		v.Condition = domain.ConditionNew
	}
	if photo := row.get("photo"); photo != "" {
		v.Photos = []string{photo}
	}
	if err := errors.Join(errs...); err != nil {
		return v, err
	}
	return v, v.Validate()
}

func parseOption(row rowReader) (domain.OptionItem, error) {
	var errs []error
	kind, err := domain.ParseOptionKind(row.get("kind"))
	if err != nil {
		return domain.OptionItem{}, err
	}
	o := domain.OptionItem{
		Kind:         kind,
		Label:        row.get("label"),
		Surcharge:    row.money("surcharge", &errs),
		Description:  row.get("description"),
		Photo:        row.get("photo"),
		HexCode:      row.get("hex_code"),
		Material:     row.get("material"),
		DiameterInch: row.integer("diameter_inch", &errs),
		Contents:     row.list("contents"),
	}
	if err := errors.Join(errs...); err != nil {
		return o, err
	}
	return o, o.Validate()
}

func parseAccessory(row rowReader) (domain.Accessory, error) {
	var errs []error
	a := domain.Accessory{
		Name:        row.get("name"),
		Category:    row.get("category"),
		Description: row.get("description"),
		Price:       row.money("price", &errs),
		Photo:       row.get("photo"),
		Stock:       row.integer("stock", &errs),
	}
	if err := errors.Join(errs...); err != nil {
		return a, err
	}
	return a, a.Validate()
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

type rowReader struct {
	record []string
	index  map[string]int
}

func (r rowReader) get(key string) string {
	pos, ok := r.index[key]
	if !ok || pos >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[pos])
}

func (r rowReader) money(key string, errs *[]error) decimal.Decimal {
	raw := r.get(key)
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %q is not a number", key, raw))
		return decimal.Zero
	}
	return d
}

func (r rowReader) integer(key string, errs *[]error) int {
	raw := r.get(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %q is not an integer", key, raw))
		return 0
	}
	return n
}

// list splits a semicolon separated cell.
func (r rowReader) list(key string) []string {
	var out []string
	for _, part := range strings.Split(r.get(key), ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
