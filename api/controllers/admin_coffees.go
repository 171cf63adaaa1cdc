package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/brewhaven/brewhaven-backend/api/responses"
	"github.com/brewhaven/brewhaven-backend/api/validators"
	"github.com/brewhaven/brewhaven-backend/internal/catalog"
	"github.com/brewhaven/brewhaven-backend/internal/inventory"
	"github.com/brewhaven/brewhaven-backend/pkg/enums"
	pkgerrors "github.com/brewhaven/brewhaven-backend/pkg/errors"
	"github.com/brewhaven/brewhaven-backend/pkg/logger"
)

type createCoffeeRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Type        string  `json:"type" validate:"required"`
	CategoryID  string  `json:"category_id" validate:"required,uuid"`
	Price       string  `json:"price" validate:"required"`
	Inventory   int     `json:"inventory" validate:"min=0"`
	Featured    bool    `json:"featured"`
	ImageURL    *string `json:"image_url,omitempty"`
}

type updateCoffeeRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Type        *string `json:"type,omitempty"`
	CategoryID  *string `json:"category_id,omitempty"`
	Price       *string `json:"price,omitempty"`
	Featured    *bool   `json:"featured,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
}

type restockRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type createCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

// AdminCoffeeCreate adds a coffee to the catalog.
func AdminCoffeeCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var body createCoffeeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coffee, err := svc.CreateCoffee(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, coffee)
	}
}

// AdminCoffeeUpdate applies a partial update to a catalog entry.
func AdminCoffeeUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body updateCoffeeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		update, err := body.toUpdate()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coffee, err := svc.UpdateCoffee(r.Context(), id, update)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, coffee)
	}
}

// AdminCoffeeDelete removes a coffee from the catalog.
func AdminCoffeeDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
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

		if err := svc.DeleteCoffee(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminCoffeeRestock adds stock to a coffee and returns the new level.
func AdminCoffeeRestock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		id, err := pathUUID(r, "coffeeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body restockRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		newLevel, err := svc.Restock(r.Context(), id, body.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"coffee_id": id, "inventory": newLevel})
	}
}

// AdminCategoryCreate registers a new catalog category.
func AdminCategoryCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var body createCategoryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.CreateCategory(r.Context(), body.Name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

func (r createCoffeeRequest) toInput() (catalog.CoffeeInput, error) {
	drinkType, err := enums.ParseDrinkType(strings.TrimSpace(r.Type))
	if err != nil {
		return catalog.CoffeeInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type")
	}

	categoryID, err := parseUUIDField(r.CategoryID, "category_id")
	if err != nil {
		return catalog.CoffeeInput{}, err
	}

	price, err := decimal.NewFromString(strings.TrimSpace(r.Price))
	if err != nil {
		return catalog.CoffeeInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}

	return catalog.CoffeeInput{
		Name:        strings.TrimSpace(r.Name),
		Description: strings.TrimSpace(r.Description),
		Type:        drinkType,
		CategoryID:  categoryID,
		Price:       price,
		Inventory:   r.Inventory,
		Featured:    r.Featured,
		ImageURL:    r.ImageURL,
	}, nil
}

func (r updateCoffeeRequest) toUpdate() (catalog.CoffeeUpdate, error) {
	update := catalog.CoffeeUpdate{
		Name:        r.Name,
		Description: r.Description,
		Featured:    r.Featured,
		ImageURL:    r.ImageURL,
	}

	if r.Type != nil {
		drinkType, err := enums.ParseDrinkType(strings.TrimSpace(*r.Type))
		if err != nil {
			return catalog.CoffeeUpdate{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type")
		}
		update.Type = &drinkType
	}

	if r.CategoryID != nil {
		categoryID, err := parseUUIDField(*r.CategoryID, "category_id")
		if err != nil {
			return catalog.CoffeeUpdate{}, err
		}
		update.CategoryID = &categoryID
	}

	if r.Price != nil {
		price, err := decimal.NewFromString(strings.TrimSpace(*r.Price))
		if err != nil {
			return catalog.CoffeeUpdate{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
		}
		update.Price = &price
	}

	return update, nil
}
