package api

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

type Product struct {
	ID            int     `json:"id"`
	Code          string  `json:"codigo_producto"`
	Name          string  `json:"nombre"`
	Description   *string `json:"descripcion,omitempty"`
	SalePrice     float64 `json:"precio_venta"`
	PurchasePrice float64 `json:"precio_compra"`
	Stock         int     `json:"stock_actual"`
	MinStock      int     `json:"stock_minimo"`
	Active        bool    `json:"activo"`
	CreatedAt     string  `json:"fecha_creacion"`
}

// LowStock reports whether stock has fallen to the reorder threshold
func (p Product) LowStock() bool {
	return p.Stock <= p.MinStock
}

// Margin is the per-unit profit at list price
func (p Product) Margin() float64 {
	return p.SalePrice - p.PurchasePrice
}

type ProductCreate struct {
	Code          string  `json:"codigo_producto" validate:"required"`
	Name          string  `json:"nombre" validate:"required"`
	Description   *string `json:"descripcion,omitempty"`
	SalePrice     float64 `json:"precio_venta" validate:"gt=0"`
	PurchasePrice float64 `json:"precio_compra" validate:"gte=0"`
	Stock         int     `json:"stock_actual" validate:"gte=0"`
	MinStock      int     `json:"stock_minimo" validate:"gte=0"`
}

// ProductUpdate sends only the fields that are set
type ProductUpdate struct {
	Code          *string  `json:"codigo_producto,omitempty" validate:"omitnil,min=1"`
	Name          *string  `json:"nombre,omitempty" validate:"omitnil,min=1"`
	Description   *string  `json:"descripcion,omitempty"`
	SalePrice     *float64 `json:"precio_venta,omitempty" validate:"omitnil,gt=0"`
	PurchasePrice *float64 `json:"precio_compra,omitempty" validate:"omitnil,gte=0"`
	Stock         *int     `json:"stock_actual,omitempty" validate:"omitnil,gte=0"`
	MinStock      *int     `json:"stock_minimo,omitempty" validate:"omitnil,gte=0"`
}

type Sale struct {
	ID          int     `json:"id"`
	SellerID    int     `json:"vendedor_id"`
	SellerName  string  `json:"vendedor_nombre,omitempty"`
	ProductID   int     `json:"producto_id"`
	ProductName string  `json:"producto_nombre,omitempty"`
	Quantity    int     `json:"cantidad"`
	UnitPrice   float64 `json:"precio_unitario"`
	Total       float64 `json:"precio_total"`
	Commission  float64 `json:"comision"`
	Date        string  `json:"fecha_venta"`
}

type SaleCreate struct {
	ProductID int     `json:"producto_id" validate:"gt=0"`
	Quantity  int     `json:"cantidad" validate:"gt=0"`
	UnitPrice float64 `json:"precio_unitario" validate:"gt=0"`
}

// Total is quantity times unit price
func (s SaleCreate) Total() float64 {
	return float64(s.Quantity) * s.UnitPrice
}

type SellerRanking struct {
	SellerID         int     `json:"vendedor_id"`
	SellerName       string  `json:"vendedor_nombre"`
	TotalSales       float64 `json:"total_ventas"`
	TotalCommissions float64 `json:"total_comisiones"`
	SalesCount       int     `json:"cantidad_ventas"`
}

type Metrics struct {
	TotalSales           float64 `json:"total_ventas"`
	TotalCommissions     float64 `json:"total_comisiones"`
	TotalProducts        int     `json:"total_productos"`
	LowStockProducts     int     `json:"productos_bajo_stock"`
	SalesThisMonth       float64 `json:"ventas_mes_actual"`
	CommissionsThisMonth float64 `json:"comisiones_mes_actual"`
}

type Notification struct {
	ID        int    `json:"id"`
	Type      string `json:"tipo"`
	Message   string `json:"mensaje"`
	Read      bool   `json:"leida"`
	CreatedAt string `json:"fecha"`
}

type NotificationTest struct {
	Message      string `json:"mensaje"`
	EmailSent    bool   `json:"email_enviado"`
	WhatsAppSent bool   `json:"whatsapp_enviado"`
}

// SellerInput is the payload for creating or updating a seller account
type SellerInput struct {
	Name              string   `json:"nombre,omitempty" validate:"required"`
	Email             string   `json:"email,omitempty" validate:"required,email"`
	Password          string   `json:"password,omitempty"`
	CommissionPercent *float64 `json:"comision_porcentaje,omitempty" validate:"omitnil,gte=0,lte=100"`
	Active            *bool    `json:"activo,omitempty"`
}

// ExportFormat is the file type of a sales export
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

func (f ExportFormat) Valid() bool {
	return f == ExportCSV || f == ExportPDF
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func validatePayload(kind string, payload any) error {
	if err := validate.Struct(payload); err != nil {
		return fmt.Errorf("%s: %w", kind, err)
	}
	return nil
}
