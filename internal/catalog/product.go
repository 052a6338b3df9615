// Package catalog holds the read-only product catalog and the sources it is loaded from.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingField  = errors.New("product is missing a required field")
	ErrUnknownSource = errors.New("unknown catalog source")
)

// Product is a catalog entry. Products are never mutated after loading.
type Product struct {
	ID          int      `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Category    string   `json:"category" yaml:"category"`
	Price       float64  `json:"price" yaml:"price"`
	Rating      float64  `json:"rating" yaml:"rating"`
	Images      []string `json:"images" yaml:"images"`
	Features    []string `json:"features" yaml:"features"`
	Description string   `json:"description" yaml:"description"`
}

// Validate reports whether the product can be indexed.
func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name", ErrMissingField)
	}
	if strings.TrimSpace(p.Category) == "" {
		return fmt.Errorf("%w: category (product %q)", ErrMissingField, p.Name)
	}
	if p.Price < 0 {
		return fmt.Errorf("product %q: negative price %v", p.Name, p.Price)
	}
	if p.Rating < 0 || p.Rating > 5 {
		return fmt.Errorf("product %q: rating %v outside 0-5", p.Name, p.Rating)
	}
	return nil
}

// Record is the on-disk shape of a product. Pointer fields distinguish an
// absent value from a zero one.
type Record struct {
	ID          int      `json:"id" yaml:"id"`
	Name        *string  `json:"name" yaml:"name"`
	Category    *string  `json:"category" yaml:"category"`
	Price       *float64 `json:"price" yaml:"price"`
	Rating      *float64 `json:"rating" yaml:"rating"`
	Images      []string `json:"images" yaml:"images"`
	Features    []string `json:"features" yaml:"features"`
	Description string   `json:"description" yaml:"description"`
}

// Product converts the record, failing when a required field is absent.
func (r Record) Product() (Product, error) {
	switch {
	case r.Name == nil:
		return Product{}, fmt.Errorf("%w: name (id %d)", ErrMissingField, r.ID)
	case r.Category == nil:
		return Product{}, fmt.Errorf("%w: category (id %d)", ErrMissingField, r.ID)
	case r.Price == nil:
		return Product{}, fmt.Errorf("%w: price (id %d)", ErrMissingField, r.ID)
	}
	p := Product{
		ID:          r.ID,
		Name:        *r.Name,
		Category:    *r.Category,
		Price:       *r.Price,
		Images:      r.Images,
		Features:    r.Features,
		Description: r.Description,
	}
	if r.Rating != nil {
		p.Rating = *r.Rating
	}
	return p, p.Validate()
}
