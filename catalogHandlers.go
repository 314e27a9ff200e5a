package main

import (
	"net/http"

	"bitbucket.org/sxnics/sxnics_backend/models"
	"github.com/gin-gonic/gin"
)

func listColorsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		colors, err := models.GetColors(c.Request.Context())
		if err != nil {
			respondError(c, "Catalog", "listColorsHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"colors": colors})
	}
}

func listSizesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sizes, err := models.GetSizes(c.Request.Context())
		if err != nil {
			respondError(c, "Catalog", "listSizesHandler", err)
			return
		}
		// The sentinel row is an implementation detail of sizeless item
		// types; the admin form never renders it.
		c.JSON(http.StatusOK, gin.H{"sizes": models.RealSizes(sizes)})
	}
}

func listShopItemTypesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		types, err := models.GetShopItemTypes(c.Request.Context())
		if err != nil {
			respondError(c, "Catalog", "listShopItemTypesHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"item_types": types})
	}
}
