package schema

// ToJSONSchema describes one row of the table as a JSON Schema object.
func (s Schema) ToJSONSchema() map[string]any {
	properties := make(map[string]any, len(s.Fields))
	required := make([]string, 0)

	for _, field := range s.Fields {
		properties[field.Name] = fieldToJSONSchema(field)
		if field.Required {
			required = append(required, field.Name)
		}
	}

	schema := map[string]any{
		"$schema":              "https://json-schema.org/draft/2020-12/schema",
		"title":                s.Name,
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}

	if len(required) > 0 {
		schema["required"] = required
	}

	if s.Description != "" {
		schema["description"] = s.Description
	}

	return schema
}

func fieldToJSONSchema(f Field) map[string]any {
	prop := map[string]any{
		"type": string(f.Type),
	}
	if f.Description != "" {
		prop["description"] = f.Description
	}
	for _, v := range f.Validators {
		// gte=0 is the only bound the row types carry
		if v == "gte=0" {
			prop["minimum"] = 0
		}
	}
	return prop
}
