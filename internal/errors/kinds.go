package errors

// Kind classifies a failure into one of the stable categories surfaced to
// clients in error envelopes and exit codes.
type Kind string

const (
	// KindInputInvalid marks requests rejected at the edge before any work.
	KindInputInvalid Kind = "InputInvalid"
	// KindEmbeddingUnavailable marks embedding service failures.
	KindEmbeddingUnavailable Kind = "EmbeddingUnavailable"
	// KindChatUnavailable marks chat completion service failures.
	KindChatUnavailable Kind = "ChatUnavailable"
	// KindResponseMalformed marks model output that could not be repaired.
	KindResponseMalformed Kind = "ResponseMalformed"
	// KindVocabularyViolation marks out-of-vocabulary muscle labels. Callers
	// drop the labels instead of failing, so this kind rarely escapes.
	KindVocabularyViolation Kind = "VocabularyViolation"
	// KindCatalogInconsistent marks index and metadata files that disagree.
	KindCatalogInconsistent Kind = "CatalogInconsistent"
	// KindRequestCanceled marks requests cut short by cancellation or
	// deadline before a usable result existed.
	KindRequestCanceled Kind = "RequestCanceled"
)

// kindError tags an error tree with a Kind without disturbing the chain.
type kindError struct {
	kind Kind
	err  error
}

func (e *kindError) Error() string {
	return e.err.Error()
}

func (e *kindError) Unwrap() error {
	return e.err
}

// WithKind tags err with a failure kind. Tagging nil returns nil.
func WithKind(err error, kind Kind) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, err: err}
}

// KindOf returns the kind tagged nearest to the surface of err's tree, or
// the empty Kind when err carries no classification.
func KindOf(err error) Kind {
	var tagged *kindError
	if As(err, &tagged) {
		return tagged.kind
	}
	return ""
}
