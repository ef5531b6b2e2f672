package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/arkicoffee/storefront-backend/api/responses"
	"github.com/arkicoffee/storefront-backend/internal/catalog"
	"github.com/arkicoffee/storefront-backend/pkg/enums"
	pkgerrors "github.com/arkicoffee/storefront-backend/pkg/errors"
	"github.com/arkicoffee/storefront-backend/pkg/logger"
)

// ProductList serves the browse page: filterable, sortable catalog listing.
func ProductList(repo *catalog.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		opts, err := listOptionsFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products := repo.List(opts)
		responses.WriteSuccess(w, map[string]any{
			"products": products,
			"count":    len(products),
		})
	}
}

// ProductDetail serves a single product by slug.
func ProductDetail(repo *catalog.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		product, err := repo.GetBySlug(chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// CollectionList serves the marketing collections.
func CollectionList(repo *catalog.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}
		responses.WriteSuccess(w, repo.Collections())
	}
}

func listOptionsFromQuery(r *http.Request) (catalog.ListOptions, error) {
	query := r.URL.Query()

	opts := catalog.ListOptions{
		Origin: query.Get("origin"),
		Query:  query.Get("q"),
		Sort:   catalog.ParseSortOption(query.Get("sort")),
	}

	if raw := query.Get("category"); raw != "" {
		category, err := enums.ParseProductCategory(raw)
		if err != nil {
			return catalog.ListOptions{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		opts.Category = &category
	}

	if raw := query.Get("inStock"); raw != "" {
		inStock, err := strconv.ParseBool(raw)
		if err != nil {
			return catalog.ListOptions{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid inStock flag")
		}
		opts.InStockOnly = inStock
	}

	return opts, nil
}
