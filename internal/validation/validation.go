// Package validation checks records, comments and share requests against
// embedded JSON schemas before anything is persisted.
package validation

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"sgb-go/internal/model"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Content limits, in characters. The schemas carry the same numbers.
const (
	MaxCommentLength = 500
	MaxReplyLength   = 300
)

// FieldError is one rejected field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

var (
	recordSchema  = mustLoad("record.json")
	commentSchema = mustLoad("comment.json")
	replySchema   = mustLoad("reply.json")
	shareSchema   = mustLoad("share.json")
)

func mustLoad(name string) *gojsonschema.Schema {
	data, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		panic(fmt.Sprintf("reading embedded schema %s: %v", name, err))
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		panic(fmt.Sprintf("compiling schema %s: %v", name, err))
	}
	return schema
}

// Record validates a record that is about to be stored.
func Record(r model.AnalysisRecord) ([]FieldError, error) {
	return validate(recordSchema, r)
}

// Comment validates a new comment.
func Comment(c model.Comment) ([]FieldError, error) {
	return validate(commentSchema, c)
}

// Reply validates a new reply or nested reply.
func Reply(r model.Reply) ([]FieldError, error) {
	return validate(replySchema, r)
}

// Share validates the data submitted with a share request.
func Share(req model.ShareRequest) ([]FieldError, error) {
	return validate(shareSchema, req)
}

// validate returns the field errors found in v, sorted by field. The error
// return is reserved for documents the validator could not process at all.
func validate(schema *gojsonschema.Schema, v any) ([]FieldError, error) {
	result, err := schema.Validate(gojsonschema.NewGoLoader(v))
	if err != nil {
		return nil, fmt.Errorf("validating document: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	out := make([]FieldError, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		out = append(out, FieldError{Field: fieldName(re), Message: re.Description()})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out, nil
}

// fieldName reports the offending property. Required-property errors are
// reported against the parent object, so the property is appended.
func fieldName(re gojsonschema.ResultError) string {
	field := re.Field()
	if re.Type() != "required" {
		return field
	}
	prop, ok := re.Details()["property"].(string)
	if !ok || prop == "" {
		return field
	}
	if field == "" || field == "(root)" {
		return prop
	}
	if field == prop || strings.HasSuffix(field, "."+prop) {
		return field
	}
	return field + "." + prop
}
