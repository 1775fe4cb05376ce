package model

import (
	"fmt"
	"strings"
)

// Category scopes a slot pool.
type Category string

const (
	CategoryGraduado Category = "GRADUADO"
	CategoryOficial  Category = "OFICIAL"
)

var Categories = []Category{CategoryGraduado, CategoryOficial}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

func (c Category) Valid() bool {
	return c == CategoryGraduado || c == CategoryOficial
}
