// Package catalog loads the product list sold in the shop.
package catalog

import (
	"fmt"
	"os"

	"arc-web/internal/data/entity"

	"gopkg.in/yaml.v3"
)

type Catalog struct {
	products []entity.Product
	byID     map[string]entity.Product
}

type file struct {
	Products []entity.Product `yaml:"products"`
}

func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(f.Products)
}

// New validates products and keeps them in the given order.
func New(products []entity.Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]entity.Product, 0, len(products)),
		byID:     make(map[string]entity.Product, len(products)),
	}

	for i, p := range products {
		if p.ID == "" {
			return nil, fmt.Errorf("product #%d: missing id", i+1)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("product %q: duplicate id", p.ID)
		}
		if p.Name == "" {
			return nil, fmt.Errorf("product %q: missing name", p.ID)
		}
		if p.Type != entity.ProductTypeSubscription && p.Type != entity.ProductTypeKey {
			return nil, fmt.Errorf("product %q: unknown type %q", p.ID, p.Type)
		}
		if p.Price <= 0 {
			return nil, fmt.Errorf("product %q: price must be positive", p.ID)
		}

		c.products = append(c.products, p)
		c.byID[p.ID] = p
	}

	return c, nil
}

func (c *Catalog) List() []entity.Product {
	return append([]entity.Product(nil), c.products...)
}

func (c *Catalog) Find(id string) (entity.Product, bool) {
	p, ok := c.byID[id]
	return p, ok
}
