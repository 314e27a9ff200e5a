package models

import (
	"context"
	"fmt"
	"io"
	"time"

	"bitbucket.org/sxnics/sxnics_backend/config"
	"bitbucket.org/sxnics/sxnics_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// OrderStatusUpdate is the JSON body of the status endpoint.
type OrderStatusUpdate struct {
	Status OrderStatus `json:"status" binding:"required"`
}

func validOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is a storefront checkout, read-only here except for its status.
// Checkouts are written by the shop frontend; the back office lists, tracks
// and exports them.
type Order struct {
	ID            int             `gorm:"primary_key" json:"id"`
	Fullname      string          `gorm:"size:100;not null" json:"fullname"`
	Email         string          `gorm:"size:255;not null" json:"email"`
	Phone         string          `gorm:"size:50" json:"phone"`
	StreetAddress string          `gorm:"size:255" json:"street_address"`
	Suburb        string          `gorm:"size:100" json:"suburb"`
	City          string          `gorm:"size:100" json:"city"`
	PostalCode    string          `gorm:"size:20" json:"postal_code"`
	Total         decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total"`
	Status        OrderStatus     `gorm:"type:enum('Pending','Shipped','Delivered','Cancelled');not null;default:'Pending'" json:"status"`
	Items         []OrderItem     `gorm:"foreignKey:OrderId" json:"items"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type OrderItem struct {
	ID        int             `gorm:"primary_key" json:"id"`
	OrderId   int             `gorm:"index;not null" json:"order_id"`
	VariantId int             `gorm:"not null" json:"variant_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Total     decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total"`
}

func GetOrders(ctx context.Context) ([]*Order, error) {
	db := config.GetDB()
	var orders []*Order
	err := db.WithContext(ctx).Preload("Items").Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func GetOrder(ctx context.Context, id int) (*Order, error) {
	return utils.FetchModel[Order](ctx, id, "Items")
}

func UpdateOrderStatus(ctx context.Context, id int, status OrderStatus) (*Order, error) {

	if !validOrderStatus(status) {
		ve := &ValidationError{Message: "Failed to update order."}
		ve.add("status", "Unknown order status")
		return nil, ve
	}

	order, err := utils.FetchModel[Order](ctx, id, "Items")
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(order).UpdateColumn("Status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	order.Status = status
	return order, nil
}

// ExportOrdersExcel writes all orders as an xlsx sheet.
func ExportOrdersExcel(ctx context.Context, w io.Writer) error {

	orders, err := GetOrders(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch orders: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	headers := []string{"Id", "Date", "Fullname", "Email", "Phone", "PhoneValid", "Address", "City", "PostalCode", "Items", "Total", "Status"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue("Sheet1", cell, h)
	}

	phoneRegion := utils.DefaultPhoneRegion()

	for row, order := range orders {
		itemCount := 0
		for _, item := range order.Items {
			itemCount += item.Quantity
		}
		// Checkout accepts phone numbers free-form; normalize to E.164 here
		// and flag the rows dispatch cannot dial as entered.
		phone, phoneOk := utils.FormatPhoneE164(order.Phone, phoneRegion)
		if !phoneOk {
			phone = order.Phone
		}
		values := []interface{}{
			order.ID,
			order.CreatedAt.Format("2006-01-02 15:04"),
			order.Fullname,
			order.Email,
			phone,
			phoneOk,
			order.StreetAddress + " " + order.Suburb,
			order.City,
			order.PostalCode,
			itemCount,
			order.Total.StringFixed(2),
			string(order.Status),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue("Sheet1", cell, v)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}
