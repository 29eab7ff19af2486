package models

import "github.com/shopspring/decimal"

func init() {
	// Prices and totals are rendered as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents a product in the catalog
type Product struct {
	ID          int64           `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Image       string          `db:"image" json:"image"`
	ModelImage  string          `db:"model_image" json:"model_image"`
	Description string          `db:"description" json:"desc"`
	Color       string          `db:"color" json:"color"`
	Sizes       string          `db:"sizes" json:"sizes"`
	Season      string          `db:"season" json:"season"`
	Type        string          `db:"type" json:"type"`
	Status      string          `db:"status" json:"status"`
}

// ProductStatusIn is the default status of a newly created product (in stock)
const ProductStatusIn = "in"

// CartLine is one product+variant+quantity entry owned by a cart identity
type CartLine struct {
	ID        int64  `db:"id" json:"id"`
	CartID    string `db:"cart_id" json:"cart_id"`
	ProductID int64  `db:"product_id" json:"product_id"`
	Size      string `db:"size" json:"size"`
	Color     string `db:"color" json:"color"`
	Quantity  int    `db:"quantity" json:"quantity"`
	CreatedAt string `db:"created_at" json:"created_at"`
}

// CartView is a cart line joined with the current product name, price and image
type CartView struct {
	CartLine
	Name  string          `db:"name" json:"name"`
	Price decimal.Decimal `db:"price" json:"price"`
	Image string          `db:"image" json:"image"`
}

// CheckoutLine is a cart line as read by checkout. ProductName is nil and
// ProductPrice invalid when the product no longer exists in the catalog.
type CheckoutLine struct {
	ID           int64               `db:"id"`
	ProductID    int64               `db:"product_id"`
	Size         string              `db:"size"`
	Color        string              `db:"color"`
	Quantity     int                 `db:"quantity"`
	ProductName  *string             `db:"product_name"`
	ProductPrice decimal.NullDecimal `db:"product_price"`
}

// Orphaned reports whether the line's product has been removed from the catalog
func (l CheckoutLine) Orphaned() bool {
	return l.ProductName == nil || !l.ProductPrice.Valid
}

// Order is a denormalized snapshot of one purchased line plus buyer data
type Order struct {
	ID       int64           `db:"id" json:"id"`
	Product  string          `db:"product" json:"product"`
	Color    string          `db:"color" json:"color"`
	Size     string          `db:"size" json:"size"`
	Amount   int             `db:"amount" json:"amount"`
	Name     string          `db:"name" json:"name"`
	Phone    string          `db:"phone" json:"phone"`
	Gov      string          `db:"gov" json:"gov"`
	City     string          `db:"city" json:"city"`
	Address  string          `db:"address" json:"address"`
	Price    decimal.Decimal `db:"price" json:"price"`
	Shipping decimal.Decimal `db:"shipping" json:"shipping"`
	Total    decimal.Decimal `db:"total" json:"total"`
	Addition string          `db:"addition" json:"addition"`
	Date     string          `db:"date" json:"date"`
}

// DateLayout is the format used for order dates when the caller supplies none
const DateLayout = "2006-01-02 15:04:05"
