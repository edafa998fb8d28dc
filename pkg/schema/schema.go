package schema

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Schema defines the columns of a table derived from a row struct.
type Schema struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []Field `json:"fields" yaml:"fields"`

	validate *validator.Validate
}

// SchemaOption configures schema creation.
type SchemaOption func(*schemaBuilder)

type schemaBuilder struct {
	description string
}

// WithDescription sets the schema description.
func WithDescription(desc string) SchemaOption {
	return func(b *schemaBuilder) {
		b.description = desc
	}
}

// NewSchema creates a Schema from a flat struct type using reflection.
// Column names come from the `csv` tag, falling back to the field name.
func NewSchema[T any](opts ...SchemaOption) (Schema, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return Schema{}, errors.New("schema must be created from a struct type, got interface")
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return Schema{}, fmt.Errorf("schema must be created from a struct type, got %v", t.Kind())
	}

	builder := &schemaBuilder{}
	for _, opt := range opts {
		opt(builder)
	}

	fields, err := extractFields(t)
	if err != nil {
		return Schema{}, err
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(columnName)

	return Schema{
		Name:        t.Name(),
		Description: builder.description,
		Fields:      fields,
		validate:    v,
	}, nil
}

// extractFields maps exported struct fields to columns. Nested types are
// rejected since a CSV row is flat.
func extractFields(t reflect.Type) ([]Field, error) {
	fields := make([]Field, 0, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() || sf.Tag.Get("csv") == "-" {
			continue
		}

		validators := parseValidators(sf.Tag.Get("validate"))
		field := Field{
			Name:        columnName(sf),
			Description: sf.Tag.Get("description"),
			Required:    slices.Contains(validators, "required"),
			Validators:  validators,
		}

		switch sf.Type.Kind() {
		case reflect.String:
			field.Type = TypeString
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			field.Type = TypeInteger
		case reflect.Float32, reflect.Float64:
			field.Type = TypeNumber
		case reflect.Bool:
			field.Type = TypeBoolean
		default:
			return nil, fmt.Errorf("unsupported column type: %v for field %s", sf.Type.Kind(), sf.Name)
		}

		fields = append(fields, field)
	}

	return fields, nil
}

// columnName returns the CSV column name from struct tags.
func columnName(sf reflect.StructField) string {
	tag := sf.Tag.Get("csv")
	if tag == "" || tag == "-" {
		return sf.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return sf.Name
	}
	return name
}

// parseValidators extracts validator tags.
func parseValidators(tag string) []string {
	if tag == "" {
		return nil
	}
	return strings.Split(tag, ",")
}

// Columns returns the column names in declaration order.
func (s Schema) Columns() []string {
	cols := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		cols[i] = f.Name
	}
	return cols
}

// Field returns the column with the given name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Validate checks a row struct against its validate tags.
func (s Schema) Validate(data any) []ValidationError {
	if s.validate == nil {
		return nil
	}

	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	err := s.validate.Struct(data)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ValidationError{{Message: err.Error()}}
	}

	errs := make([]ValidationError, 0, len(verrs))
	for _, e := range verrs {
		errs = append(errs, ValidationError{
			Field:   e.Field(),
			Message: formatValidationError(e),
			Value:   e.Value(),
		})
	}
	return errs
}

// formatValidationError creates a human-readable error message.
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", e.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", e.Param())
	default:
		return fmt.Sprintf("failed validation '%s'", e.Tag())
	}
}
