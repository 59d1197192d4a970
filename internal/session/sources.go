package session

import (
	"strconv"

	"github.com/dohr-michael/devhelper/clients/answer"
)

// PlaceholderSource is the value the service uses for "no real link available".
const PlaceholderSource = "#"

// IsValidSource reports whether a candidate can be shown as a link.
func IsValidSource(s answer.Source) bool {
	return s.URL != "" && s.URL != PlaceholderSource
}

// ValidSources returns the candidates that can be displayed, in service order.
// Duplicates are kept. The result never aliases raw and is never nil.
func ValidSources(raw []answer.Source) []answer.Source {
	valid := make([]answer.Source, 0, len(raw))
	for _, s := range raw {
		if IsValidSource(s) {
			valid = append(valid, s)
		}
	}
	return valid
}

// SourceLabel returns the display label for the i-th (0-based) valid source.
func SourceLabel(i int) string {
	return "Source " + strconv.Itoa(i+1)
}
