// Package analysis holds the collaborators that turn uploaded record pages
// into an AnalysisRecord: text extraction and the analyzer itself.
package analysis

import (
	"context"

	"sgb-go/internal/model"
)

// TextExtractor recognizes the text on one uploaded page.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// Request is the input to an Analyzer. Texts[i] was extracted from Files[i];
// a page whose extraction failed has an empty text.
type Request struct {
	Texts           []string
	Files           []string
	CareerDirection string
}

// Analyzer produces an analysis from extracted page texts. The returned
// record carries content fields only; identity, ownership and visibility
// are assigned by the caller.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (model.AnalysisRecord, error)
}
