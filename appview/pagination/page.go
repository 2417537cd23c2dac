package pagination

import (
	"errors"
	"fmt"
)

const (
	DefaultLimit = 30
	// GitHub silently caps larger page sizes, which would make every full
	// page look short.
	MaxLimit = 100
)

var ErrInvalidLimit = errors.New("page size out of range")

// ValidateLimit accepts page sizes within 1..MaxLimit.
func ValidateLimit(limit int) error {
	if limit < 1 || limit > MaxLimit {
		return fmt.Errorf("%w: %d not within 1..%d", ErrInvalidLimit, limit, MaxLimit)
	}
	return nil
}

// Page is a 1-based page number as understood by the GitHub API.
type Page struct {
	Number int // 1-based
	Limit  int // number of items in a page
}

func FirstPage() Page {
	return Page{
		Number: 1,
		Limit:  DefaultLimit,
	}
}

// Shift moves by delta pages without any bounds checking.
func (p Page) Shift(delta int) Page {
	return Page{
		Number: p.Number + delta,
		Limit:  p.Limit,
	}
}

func (p Page) HasPrevious() bool {
	return p.Number >= 2
}

func (p Page) Next() Page {
	return p.Shift(1)
}

// IterateFrom walks pages starting at start until a short page comes back.
func IterateFrom[T any](
	start Page,
	fetch func(page Page) ([]T, error),
	handle func(items []T) error,
) error {
	page := start
	for {
		items, err := fetch(page)
		if err != nil {
			return err
		}

		err = handle(items)
		if err != nil {
			return err
		}
		if len(items) < page.Limit || len(items) == 0 {
			break
		}
		page = page.Next()
	}
	return nil
}
