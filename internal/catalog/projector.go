// Package catalog derives per-category views from the full product collection. Every
// function is pure and recomputed from its input snapshot.
package catalog

import "github.com/ridloal/storefront-sync/internal/product/domain"

// Project returns the products in category, preserving input order. Unknown categories
// yield an empty, non-nil slice.
func Project(products []domain.Product, category domain.Category) []domain.Product {
	out := []domain.Product{}
	if !category.IsKnown() {
		return out
	}
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Partition splits products into the known categories. Records in an unknown category
// are dropped.
func Partition(products []domain.Product) map[domain.Category][]domain.Product {
	out := make(map[domain.Category][]domain.Product, 3)
	for _, c := range domain.Categories() {
		out[c] = []domain.Product{}
	}
	for _, p := range products {
		if p.Category.IsKnown() {
			out[p.Category] = append(out[p.Category], p)
		}
	}
	return out
}

func Count(products []domain.Product) domain.Counts {
	c := domain.Counts{Total: len(products)}
	for _, p := range products {
		switch p.Category {
		case domain.CategoryFurniture:
			c.Furniture++
		case domain.CategoryProperties:
			c.Properties++
		case domain.CategoryAuto:
			c.Auto++
		}
	}
	return c
}

// Filter applies the admin list filter: "all" (or empty) returns everything.
func Filter(products []domain.Product, filter string) []domain.Product {
	if filter == "" || filter == "all" {
		return products
	}
	return Project(products, domain.ParseCategory(filter))
}
