package main

import (
	"fmt"
	"net/http"
	"time"

	"bitbucket.org/sxnics/sxnics_backend/models"
	"github.com/gin-gonic/gin"
)

func listOrdersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := models.GetOrders(c.Request.Context())
		if err != nil {
			respondError(c, "Order", "listOrdersHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}

func getOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		order, err := models.GetOrder(c.Request.Context(), id)
		if err != nil {
			respondError(c, "Order", "getOrderHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

func updateOrderStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		var body models.OrderStatusUpdate
		if err := c.ShouldBindJSON(&body); err != nil {
			if ve := models.BindingValidationError("Missed fields, failed to update order.", err); ve != nil {
				respondError(c, "Order", "updateOrderStatusHandler", ve)
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}
		order, err := models.UpdateOrderStatus(c.Request.Context(), id, body.Status)
		if err != nil {
			respondError(c, "Order", "updateOrderStatusHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

func exportOrdersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filename := fmt.Sprintf("orders_%s.xlsx", time.Now().Format("2006-01-02"))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		if err := models.ExportOrdersExcel(c.Request.Context(), c.Writer); err != nil {
			respondError(c, "Order", "exportOrdersHandler", err)
			return
		}
	}
}
