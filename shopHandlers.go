package main

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"

	"bitbucket.org/sxnics/sxnics_backend/models"
	"bitbucket.org/sxnics/sxnics_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func listShopItemsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := models.GetShopItems(c.Request.Context())
		if err != nil {
			respondError(c, "ShopItem", "listShopItemsHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}

func getShopItemHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		item, err := models.GetShopItem(c.Request.Context(), id)
		if err != nil {
			respondError(c, "ShopItem", "getShopItemHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"item": item})
	}
}

func createShopItemHandler(storage utils.ObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "CreateShopItem")
		defer span.End()

		form, ok := requestForm(c)
		if !ok {
			return
		}
		input, formData, err := parseShopItemForm(ctx, form, false)
		if err != nil {
			respondError(c, "ShopItem", "createShopItemHandler", err)
			return
		}
		result, err := models.CreateShopItem(ctx, storage, input, formData)
		if err != nil {
			respondError(c, "ShopItem", "createShopItemHandler", err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func editShopItemHandler(storage utils.ObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "EditShopItem")
		defer span.End()

		form, ok := requestForm(c)
		if !ok {
			return
		}
		id, ok := editItemId(c, form)
		if !ok {
			return
		}
		input, formData, err := parseShopItemForm(ctx, form, true)
		if err != nil {
			respondError(c, "ShopItem", "editShopItemHandler", err)
			return
		}

		// Colors the admin form rendered checked but the user unchecked before
		// submitting arrive as an explicit id list; force-uncheck them so
		// stale quantity fields cannot resurrect their rows.
		if raw := formString(form, "uncheckedColorsIds"); raw != "" {
			var colorIds []int
			if err := json.Unmarshal([]byte(raw), &colorIds); err != nil {
				respondError(c, "ShopItem", "editShopItemHandler",
					&models.ParseError{Field: "uncheckedColorsIds", Value: raw})
				return
			}
			formData.ApplyUncheckedColorIds(colorIds)
		}

		typeChanged := formBool(form, "itemTypeChanged")
		result, err := models.EditShopItem(ctx, storage, id, input, formData, typeChanged)
		if err != nil {
			respondError(c, "ShopItem", "editShopItemHandler", err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func deleteShopItemHandler(storage utils.ObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		result, err := models.DeleteShopItem(c.Request.Context(), storage, id)
		if err != nil {
			respondError(c, "ShopItem", "deleteShopItemHandler", err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// editItemId resolves the item under edit: the URL path id when routed as
// PUT /shop/items/:id, else the form's own shop_item_id field.
func editItemId(c *gin.Context, form *multipart.Form) (int, bool) {
	raw := c.Param("id")
	if raw == "" {
		raw = formString(form, "shop_item_id")
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid shop item id"})
		return 0, false
	}
	return id, true
}

// parseShopItemForm decodes the shared create/edit multipart payload: the
// parent item's scalar fields plus the per-color inventory grid.
func parseShopItemForm(ctx context.Context, form *multipart.Form, editMode bool) (*models.NewShopItem, *models.InventoryFormData, error) {
	input := &models.NewShopItem{
		Name:        formString(form, "name"),
		Description: formString(form, "description"),
	}

	if raw := formString(form, "item_type_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return nil, nil, &models.ParseError{Field: "item_type_id", Value: raw}
		}
		input.ItemTypeId = id
	}
	if raw := formString(form, "price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, nil, &models.ParseError{Field: "price", Value: raw}
		}
		input.Price = price
	}

	colors, err := models.GetColors(ctx)
	if err != nil {
		return nil, nil, err
	}
	sizes, err := models.GetSizes(ctx)
	if err != nil {
		return nil, nil, err
	}

	// An unknown item_type_id parses as sizeless; validation rejects the
	// type id itself before anything is persisted.
	hasSizes := false
	types, err := models.GetShopItemTypes(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, t := range types {
		if t.ID == input.ItemTypeId {
			hasSizes = t.HasSizes != nil && *t.HasSizes
			break
		}
	}

	formData, err := models.ParseInventoryForm(form, colors, sizes, hasSizes, editMode)
	if err != nil {
		return nil, nil, err
	}
	return input, formData, nil
}
