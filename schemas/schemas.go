// Package schemas embeds the JSON schemas used to validate configuration files.
package schemas

import _ "embed"

// ConfigSchemaJSON is the JSON schema for .conform.yaml.
//
//go:embed config.schema.json
var ConfigSchemaJSON string
