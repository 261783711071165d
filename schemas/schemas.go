// Package schemas embeds the JSON Schemas shipped with lineagebench.
package schemas

import _ "embed"

// AnswerSchemaJSON is the schema every model answer must satisfy.
//
//go:embed answer.schema.json
var AnswerSchemaJSON string
