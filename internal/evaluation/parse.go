package evaluation

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema.json
var schemaJSON string

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

var evaluationSchema = mustCompileSchema(schemaJSON, "evaluation.schema.json")

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	schemaDoc, err := decodeJSON(raw)
	if err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// ParseError is returned when a score response is not a valid evaluation.
type ParseError struct {
	// Problems lists each schema violation as "<location>: <message>".
	Problems []string
	Err      error
}

func (e *ParseError) Error() string {
	if len(e.Problems) > 0 {
		return "invalid evaluation: " + strings.Join(e.Problems, "; ")
	}
	return fmt.Sprintf("invalid evaluation: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ErrEmptyResponse is wrapped by a ParseError for blank input.
var ErrEmptyResponse = errors.New("response is empty")

// Parse decodes raw into an Evaluation. A surrounding Markdown code fence is
// ignored. The document must satisfy the embedded schema.
func Parse(raw string) (*Evaluation, error) {
	body := StripCodeFence(raw)
	if body == "" {
		return nil, &ParseError{Err: ErrEmptyResponse}
	}

	instance, err := decodeJSON(body)
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("not valid JSON: %w", err)}
	}

	if problems := validate(instance); len(problems) > 0 {
		return nil, &ParseError{Problems: problems}
	}

	var ev Evaluation
	if err := json.Unmarshal([]byte(body), &ev); err != nil {
		return nil, &ParseError{Err: err}
	}
	return &ev, nil
}

// StripCodeFence removes a leading ```json (or bare ```) fence and its
// closing fence, then trims whitespace.
func StripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = ""
	}

	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// decodeJSON keeps numbers as json.Number, the form the validator expects.
func decodeJSON(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after the JSON object")
	}
	return v, nil
}

func validate(instance any) []string {
	err := evaluationSchema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}
