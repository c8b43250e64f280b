package faq

import "github.com/Laisky/errors/v2"

var (
	// ErrSourceUnavailable the faq source is missing or can not be read
	ErrSourceUnavailable = errors.New("faq source unavailable")
	// ErrMalformedSource the faq source can not be parsed into question/answer pairs
	ErrMalformedSource = errors.New("faq source malformed")
)
