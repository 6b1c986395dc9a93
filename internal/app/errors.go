package app

import "errors"

var (
	ErrQuestionEmpty = errors.New("question is required")
	ErrFileMissing   = errors.New("no file provided")
	ErrDocumentStore = errors.New("document store query failed")
)
