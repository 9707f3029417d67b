package table

import "golang.org/x/text/language"

// Option configures an Engine.
type Option func(*settings)

type settings struct {
	searchColumn string
	twoState     bool
	lang         language.Tag
}

// WithSearchColumn selects the column the search term is matched against.
// Defaults to the first column.
func WithSearchColumn(key string) Option {
	return func(s *settings) {
		if key != "" {
			s.searchColumn = key
		}
	}
}

// WithTwoStateSort makes ToggleSort alternate asc and desc without an
// unsorted step.
func WithTwoStateSort() Option {
	return func(s *settings) { s.twoState = true }
}

// WithLanguage sets the collation language for text columns.
func WithLanguage(tag language.Tag) Option {
	return func(s *settings) { s.lang = tag }
}
