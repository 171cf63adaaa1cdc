package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/brewhaven/brewhaven-backend/api/responses"
	"github.com/brewhaven/brewhaven-backend/api/validators"
	"github.com/brewhaven/brewhaven-backend/internal/catalog"
	"github.com/brewhaven/brewhaven-backend/pkg/enums"
	pkgerrors "github.com/brewhaven/brewhaven-backend/pkg/errors"
	"github.com/brewhaven/brewhaven-backend/pkg/logger"
)

// CoffeeList serves the public catalog with optional filters.
func CoffeeList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		filters, err := parseCoffeeFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coffees, err := svc.ListCoffees(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, coffees)
	}
}

// CoffeeDetail serves a single catalog entry.
func CoffeeDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := pathUUID(r, "coffeeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coffee, err := svc.GetCoffee(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, coffee)
	}
}

// CategoryList serves the category directory.
func CategoryList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, categories)
	}
}

func parseCoffeeFilters(r *http.Request) (catalog.Filters, error) {
	filters := catalog.Filters{
		Query: validators.SanitizeString(r.URL.Query().Get("q"), 128),
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("category_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return catalog.Filters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category_id")
		}
		filters.CategoryID = &id
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
		drinkType, err := enums.ParseDrinkType(raw)
		if err != nil {
			return catalog.Filters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type")
		}
		filters.Type = &drinkType
	}

	return filters, nil
}
