// Package labels validates body ID tags and matches label search queries.
//
// Labels are case-sensitive and compared byte for byte; surrounding
// whitespace is significant. A search query is a substring match in which
// '%' matches any run of characters.
package labels

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	bodymodels "dvi/internal/body/models"
	id "dvi/pkg/domain"
	dErrors "dvi/pkg/domain-errors"
	"dvi/pkg/platform/sentinel"
)

const MaxLength = 64

// Finder looks a body up by its exact label.
type Finder interface {
	FindBodyByLabel(ctx context.Context, label string) (*bodymodels.Body, error)
}

// Validate fails with empty_label or duplicate_label. except names a body
// allowed to hold the label already (the body being relabeled).
func Validate(ctx context.Context, f Finder, label string, except id.BodyID) error {
	if err := CheckFormat(label); err != nil {
		return err
	}
	existing, err := f.FindBodyByLabel(ctx, label)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID == except:
		return nil
	}
	return dErrors.NewField(dErrors.CodeDuplicateLabel, "label", "label "+label+" is already in use")
}

// CheckFormat applies the store-independent rules.
func CheckFormat(label string) error {
	if strings.TrimSpace(label) == "" {
		return dErrors.NewField(dErrors.CodeEmptyLabel, "label", "label must not be blank")
	}
	if utf8.RuneCountInString(label) > MaxLength {
		return dErrors.NewField(dErrors.CodeInvalidInput, "label", "label must be 64 characters or less")
	}
	return nil
}

// Pattern turns a query into a SQL LIKE pattern with '\' as the escape
// character. '%' in the query stays a wildcard; '_' is literal.
func Pattern(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 2)
	b.WriteByte('%')
	for i := 0; i < len(query); i++ {
		switch c := query[i]; c {
		case '_', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('%')
	return b.String()
}

// Match reports whether label matches query with the same semantics as
// Pattern under LIKE.
func Match(query, label string) bool {
	rest := label
	for part := range strings.SplitSeq(query, "%") {
		if part == "" {
			continue
		}
		i := strings.Index(rest, part)
		if i < 0 {
			return false
		}
		rest = rest[i+len(part):]
	}
	return true
}
