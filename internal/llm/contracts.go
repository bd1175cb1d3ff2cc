package llm

import (
	"context"

	"github.com/huynhduongtien171003/amis-demo/constants"
)

// ExtractRequest describes one call to the external extraction model.
// Exactly one of Text or ImagePath is expected to be set.
type ExtractRequest struct {
	Kind              constants.DocumentKind
	Text              string
	ImagePath         string
	AdditionalContext string
}

// Extractor is the capability the pipeline depends on: submit an image or
// text, get the model's raw response back. The response is untrusted — it
// goes through payload extraction and normalization before anything
// believes it.
type Extractor interface {
	Extract(ctx context.Context, req ExtractRequest) (string, error)
}
