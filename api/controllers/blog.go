package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arkicoffee/storefront-backend/api/responses"
	"github.com/arkicoffee/storefront-backend/internal/blog"
	pkgerrors "github.com/arkicoffee/storefront-backend/pkg/errors"
	"github.com/arkicoffee/storefront-backend/pkg/logger"
)

// BlogList serves all journal posts.
func BlogList(repo *blog.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "blog unavailable"))
			return
		}
		responses.WriteSuccess(w, repo.List())
	}
}

// BlogDetail serves a single post by slug.
func BlogDetail(repo *blog.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "blog unavailable"))
			return
		}

		post, err := repo.GetBySlug(chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, post)
	}
}
