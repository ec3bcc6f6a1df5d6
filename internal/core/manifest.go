package core

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidManifest wraps every manifest parse or validation failure.
var ErrInvalidManifest = errors.New("invalid source manifest")

// Manifest is the on-disk layout of a source manifest:
//
//	sources:
//	  - key: whr
//	    file: WHR2024.csv
//	    key_column: Country name
//	    columns: [Country name, Ladder score]
//
// Sources without an explicit order are joined in file order.
type Manifest struct {
	Sources []SourceInfo `yaml:"sources" validate:"required,min=1,dive"`
}

var validate = newValidator()

// newValidator reports fields by their YAML names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// LoadManifest reads and validates a YAML source manifest.
func LoadManifest(path string) ([]SourceDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	defs, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

// ParseManifest decodes and validates manifest YAML.
func ParseManifest(data []byte) ([]SourceDefinition, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	if err := validate.Struct(m); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidManifest, describeValidation(err))
	}

	seen := make(map[string]bool, len(m.Sources))
	defs := make([]SourceDefinition, 0, len(m.Sources))
	for i, info := range m.Sources {
		if seen[info.Key] {
			return nil, fmt.Errorf("%w: duplicate source key %q", ErrInvalidManifest, info.Key)
		}
		seen[info.Key] = true

		if info.Order == 0 {
			info.Order = i + 1
		}
		if len(info.Columns) > 0 && !contains(info.Columns, info.KeyColumn) {
			info.Columns = append([]string{info.KeyColumn}, info.Columns...)
		}
		defs = append(defs, SourceDefinition{Info: info})
	}

	SortSources(defs)
	return defs, nil
}

// describeValidation flattens validator errors into one line, e.g.
// "sources[1].file is required".
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Manifest.")
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s needs at least %s entries", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s fails %s", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
