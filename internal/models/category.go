package models

import "naijatax/internal/taxengine"

// CategoryType defines the direction of transactions in a category.
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Category is a per-company classification with a default tax treatment.
type Category struct {
	Base
	CompanyID     string           `gorm:"type:uuid;not null;index" json:"company_id"`
	Name          string           `gorm:"not null" json:"name"`
	Type          CategoryType     `gorm:"type:varchar(10);not null" json:"type"`
	DefaultTaxTag taxengine.TaxTag `gorm:"type:varchar(20);not null;default:'None'" json:"default_tax_tag"`
	Description   string           `json:"description"`
}
