package app

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrFundNotFound         = errors.New("fund not found")
	ErrDocumentNotFound     = errors.New("document not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNoExtractableContent = errors.New("document has no extractable content")
)
