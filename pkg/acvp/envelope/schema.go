package envelope

import "github.com/invopop/jsonschema"

// Schema generates the JSON Schema for Document from its Go struct tags.
// Tests check that the schema lists Document's top-level fields; it gives
// operators something concrete to diff against the server's published
// schema instead of eyeballing field names in example payloads.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{DoNotReference: true}
	return r.Reflect(&Document{})
}
