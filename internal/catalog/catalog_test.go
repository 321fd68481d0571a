package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"arc-web/internal/data/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
products:
  - id: vip
    name: VIP Rank
    type: subscription
    price: 500
    description: Monthly VIP perks
  - id: crate-key
    name: Crate Key
    type: key
    price: 2.5
`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)

	products := c.List()
	require.Len(t, products, 2)
	assert.Equal(t, "vip", products[0].ID)
	assert.Equal(t, entity.ProductTypeKey, products[1].Type)

	p, ok := c.Find("crate-key")
	require.True(t, ok)
	assert.Equal(t, 2.5, p.Price)

	_, ok = c.Find("missing")
	assert.False(t, ok)
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]string{
		"duplicate id": `
products:
  - {id: a, name: A, type: key, price: 1}
  - {id: a, name: B, type: key, price: 1}
`,
		"unknown type": `
products:
  - {id: a, name: A, type: bundle, price: 1}
`,
		"non-positive price": `
products:
  - {id: a, name: A, type: key, price: 0}
`,
		"missing id": `
products:
  - {name: A, type: key, price: 1}
`,
		"not yaml": `products: [`,
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, c.List(), 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestShippedCatalogIsValid(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "config", "catalog.yaml"))
	require.NoError(t, err)
	assert.NotEmpty(t, c.List())
}
