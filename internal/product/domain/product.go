package domain

import (
	"strings"
	"time"
)

type Category string

const (
	CategoryFurniture  Category = "furniture"
	CategoryProperties Category = "properties"
	CategoryAuto       Category = "auto"
)

// Categories lists the known categories in display order.
func Categories() []Category {
	return []Category{CategoryFurniture, CategoryProperties, CategoryAuto}
}

func (c Category) IsKnown() bool {
	switch c {
	case CategoryFurniture, CategoryProperties, CategoryAuto:
		return true
	}
	return false
}

// ParseCategory normalizes user input. Unknown values are kept as-is: they are stored but
// never appear in a category view.
func ParseCategory(s string) Category {
	return Category(strings.ToLower(strings.TrimSpace(s)))
}

type Product struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Price        Price      `json:"price"`
	Category     Category   `json:"category"`
	Description  string     `json:"description"`
	Image        string     `json:"image"`
	Condition    string     `json:"condition,omitempty"` // local backing only
	CreatedAt    time.Time  `json:"created_at"`
	LastModified *time.Time `json:"last_modified,omitempty"` // local backing only
}

// ProductInput is the mutable field set sent on add and update. Callers always send
// every field; both backings replace the whole record.
type ProductInput struct {
	Name        string   `json:"name"`
	Price       Price    `json:"price"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Condition   string   `json:"condition,omitempty"`
}

// Counts is the dashboard aggregate. Total counts every record, the category fields
// only records in a known category.
type Counts struct {
	Total      int `json:"total"`
	Furniture  int `json:"furniture"`
	Properties int `json:"properties"`
	Auto       int `json:"auto"`
}
