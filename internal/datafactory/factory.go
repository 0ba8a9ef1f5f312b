// Package datafactory generates synthetic test data records.
package datafactory

import (
	"fmt"
	"slices"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
)

// MaxRows bounds a single Generate call.
const MaxRows = 10_000

// Record is one generated row, keyed by field name.
type Record map[string]string

type generator func(f *gofakeit.Faker) string

var generators = map[string]generator{
	"name":        func(f *gofakeit.Faker) string { return f.Name() },
	"first_name":  func(f *gofakeit.Faker) string { return f.FirstName() },
	"last_name":   func(f *gofakeit.Faker) string { return f.LastName() },
	"email":       func(f *gofakeit.Faker) string { return f.Email() },
	"phone":       func(f *gofakeit.Faker) string { return f.Phone() },
	"address":     func(f *gofakeit.Faker) string { return f.Address().Address },
	"street":      func(f *gofakeit.Faker) string { return f.Street() },
	"city":        func(f *gofakeit.Faker) string { return f.City() },
	"state":       func(f *gofakeit.Faker) string { return f.State() },
	"country":     func(f *gofakeit.Faker) string { return f.Country() },
	"zip":         func(f *gofakeit.Faker) string { return f.Zip() },
	"company":     func(f *gofakeit.Faker) string { return f.Company() },
	"job":         func(f *gofakeit.Faker) string { return f.JobTitle() },
	"username":    func(f *gofakeit.Faker) string { return f.Username() },
	"password":    func(f *gofakeit.Faker) string { return f.Password(true, true, true, true, false, 14) },
	"uuid":        func(f *gofakeit.Faker) string { return f.UUID() },
	"date":        func(f *gofakeit.Faker) string { return f.Date().Format("2006-01-02") },
	"ipv4":        func(f *gofakeit.Faker) string { return f.IPv4Address() },
	"url":         func(f *gofakeit.Faker) string { return f.URL() },
	"credit_card": func(f *gofakeit.Faker) string { return f.CreditCardNumber(nil) },
	"sentence":    func(f *gofakeit.Faker) string { return f.LoremIpsumSentence(8) },
}

// aliases maps alternative spellings to canonical field names.
var aliases = map[string]string{
	"full_name":    "name",
	"firstname":    "first_name",
	"lastname":     "last_name",
	"mail":         "email",
	"phone_number": "phone",
	"postcode":     "zip",
	"job_title":    "job",
	"ip":           "ipv4",
	"card":         "credit_card",
}

// Fields returns the supported field names, sorted.
func Fields() []string {
	names := make([]string, 0, len(generators))
	for name := range generators {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Factory generates records. A Factory is not safe for concurrent use.
type Factory struct {
	faker *gofakeit.Faker
}

// New creates a Factory. A seed of 0 picks a random seed; any other value
// makes the output reproducible.
func New(seed uint64) *Factory {
	return &Factory{faker: gofakeit.New(seed)}
}

// Generate returns exactly count records, each holding exactly the requested
// fields with non-empty values. Field names are matched case-insensitively.
func (fc *Factory) Generate(fields []string, count int) ([]Record, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("at least one field is required")
	}
	if count < 1 || count > MaxRows {
		return nil, fmt.Errorf("row count must be between 1 and %d, got %d", MaxRows, count)
	}

	names, err := NormalizeFields(fields)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, count)
	for range count {
		rec := make(Record, len(names))
		for _, name := range names {
			rec[name] = fc.value(name)
		}
		records = append(records, rec)
	}
	return records, nil
}

// value retries a few times in the unlikely case a generator yields "".
func (fc *Factory) value(name string) string {
	gen := generators[name]
	for range 5 {
		if v := gen(fc.faker); strings.TrimSpace(v) != "" {
			return v
		}
	}
	return fc.faker.UUID()
}

// NormalizeFields resolves aliases and validates fields. Unknown and
// duplicate fields are errors.
func NormalizeFields(fields []string) ([]string, error) {
	names := make([]string, 0, len(fields))
	seen := map[string]bool{}

	for _, raw := range fields {
		name := strings.ToLower(strings.TrimSpace(raw))
		name = strings.ReplaceAll(name, " ", "_")
		if canonical, ok := aliases[name]; ok {
			name = canonical
		}

		if _, ok := generators[name]; !ok {
			return nil, fmt.Errorf("unknown field %q (supported: %s)", raw, strings.Join(Fields(), ", "))
		}
		if seen[name] {
			return nil, fmt.Errorf("field %q requested more than once", name)
		}
		seen[name] = true
		names = append(names, name)
	}
	return names, nil
}

// ParseFields splits a comma-separated field list.
func ParseFields(s string) []string {
	var fields []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			fields = append(fields, p)
		}
	}
	return fields
}
