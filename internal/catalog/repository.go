package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/arkicoffee/storefront-backend/pkg/errors"
	"go.uber.org/multierr"
)

const (
	productsFixture    = "products.json"
	collectionsFixture = "collections.json"
)

// Repository serves the static catalog. All data is loaded once at startup
// and is immutable afterwards, so reads need no locking.
type Repository struct {
	products    []Product
	byID        map[string]Product
	bySlug      map[string]Product
	collections []Collection
}

// NewRepository loads the catalog fixtures from dir. Errors across fixture
// files are aggregated so a broken deploy reports everything at once.
func NewRepository(dir string) (*Repository, error) {
	var errs error

	var products []Product
	if err := loadFixture(filepath.Join(dir, productsFixture), &products); err != nil {
		errs = multierr.Append(errs, err)
	}

	var collections []Collection
	if err := loadFixture(filepath.Join(dir, collectionsFixture), &collections); err != nil {
		errs = multierr.Append(errs, err)
	}

	if errs != nil {
		return nil, errs
	}

	repo := &Repository{
		products:    products,
		byID:        make(map[string]Product, len(products)),
		bySlug:      make(map[string]Product, len(products)),
		collections: collections,
	}
	for _, p := range products {
		if err := validateProduct(p); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if _, exists := repo.byID[p.ID]; exists {
			errs = multierr.Append(errs, fmt.Errorf("duplicate product id %q", p.ID))
			continue
		}
		repo.byID[p.ID] = p
		repo.bySlug[p.Slug] = p
	}
	if errs != nil {
		return nil, errs
	}
	return repo, nil
}

func loadFixture(path string, dest any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read fixture %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return nil
}

func validateProduct(p Product) error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("product with empty id (slug %q)", p.Slug)
	}
	if strings.TrimSpace(p.Slug) == "" {
		return fmt.Errorf("product %s has empty slug", p.ID)
	}
	if !p.Price.IsPositive() {
		return fmt.Errorf("product %s has non-positive price %s", p.ID, p.Price)
	}
	if !p.Category.IsValid() {
		return fmt.Errorf("product %s has invalid category %q", p.ID, p.Category)
	}
	return nil
}

// GetByID returns the product with the given id.
func (r *Repository) GetByID(id string) (Product, error) {
	product, ok := r.byID[id]
	if !ok {
		return Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

// GetBySlug returns the product with the given slug.
func (r *Repository) GetBySlug(slug string) (Product, error) {
	product, ok := r.bySlug[slug]
	if !ok {
		return Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

// List returns products matching the filters, ordered per the sort option.
func (r *Repository) List(opts ListOptions) []Product {
	out := make([]Product, 0, len(r.products))
	for _, p := range r.products {
		if opts.matches(p) {
			out = append(out, p)
		}
	}
	sortProducts(out, opts.Sort)
	return out
}

// Collections returns all marketing collections.
func (r *Repository) Collections() []Collection {
	out := make([]Collection, len(r.collections))
	copy(out, r.collections)
	return out
}
