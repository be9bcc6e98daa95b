// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CatalogCustomerTable represents the 'catalog.customer' table
type CatalogCustomerTable struct {
	Table       string
	ID          string
	ExternalID  string
	FullName    string
	Email       string
	Phone       string
	LoyaltyTier string
	IsVIP       string
	CreatedAt   string
	UpdatedAt   string
}

var CatalogCustomer = CatalogCustomerTable{
	Table:       "catalog.customer",
	ID:          "id",
	ExternalID:  "externalid",
	FullName:    "fullname",
	Email:       "email",
	Phone:       "phone",
	LoyaltyTier: "loyaltytier",
	IsVIP:       "isvip",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

func (t CatalogCustomerTable) Columns() []string {
	return []string{
		t.ID, t.ExternalID, t.FullName, t.Email, t.Phone, t.LoyaltyTier, t.IsVIP, t.CreatedAt, t.UpdatedAt,
	}
}

// CatalogSaleTable represents the 'catalog.sale' table
type CatalogSaleTable struct {
	Table      string
	ID         string
	CustomerID string
	Total      string
	CreatedAt  string
}

var CatalogSale = CatalogSaleTable{
	Table:      "catalog.sale",
	ID:         "id",
	CustomerID: "customerid",
	Total:      "total",
	CreatedAt:  "createdat",
}

// CatalogSaleItemTable represents the 'catalog.saleitem' table
type CatalogSaleItemTable struct {
	Table     string
	ID        string
	SaleID    string
	ProductID string
	Quantity  string
	UnitPrice string
}

var CatalogSaleItem = CatalogSaleItemTable{
	Table:     "catalog.saleitem",
	ID:        "id",
	SaleID:    "saleid",
	ProductID: "productid",
	Quantity:  "quantity",
	UnitPrice: "unitprice",
}
