package sessions

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownCategory = errors.New("unknown session category")

// Category can be one of:
//   - A
//   - B
//   - C
type Category string

const (
	CategoryA Category = "A"
	CategoryB Category = "B"
	CategoryC Category = "C"
)

// Categories returns all session categories, in display order.
func Categories() []Category {
	return []Category{CategoryA, CategoryB, CategoryC}
}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

func (c Category) String() string {
	return string(c)
}

func (c Category) IsValid() bool {
	switch c {
	case CategoryA,
		CategoryB,
		CategoryC:
		return true
	default:
		return false
	}
}

// CollectionPath is the remote document collection holding this category's exercises.
func (c Category) CollectionPath() string {
	return "sessions/" + string(c) + "/exercises"
}
