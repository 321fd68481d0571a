package usecase

import (
	"arc-web/internal/catalog"
	"arc-web/internal/data/entity"
)

type ProductService interface {
	List() []entity.Product
}

type productService struct {
	catalog *catalog.Catalog
}

func NewProductService(products *catalog.Catalog) ProductService {
	return &productService{catalog: products}
}

func (s *productService) List() []entity.Product {
	return s.catalog.List()
}
