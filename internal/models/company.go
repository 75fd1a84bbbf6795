package models

import (
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"naijatax/internal/taxengine"
)

// Company is the business profile transactions are filed under.
type Company struct {
	Base
	UserID               string               `gorm:"type:uuid;not null;index" json:"user_id"`
	Name                 string               `gorm:"not null" json:"name"`
	EntityType           taxengine.EntityType `gorm:"type:varchar(20);not null" json:"entity_type"`
	Sector               string               `json:"sector"`
	TIN                  *string              `gorm:"uniqueIndex" json:"tin,omitempty"`
	VATRegistered        bool                 `gorm:"default:false" json:"vat_registered"`
	TotalAssets          decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0" json:"total_assets"`
	VentureCount         int                  `gorm:"default:1" json:"venture_count"`
	OwnerNeeds           decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0" json:"owner_needs"`
	PreviousYearExpenses decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0" json:"previous_year_expenses"`
}

// BeforeCreate normalises the profile before insert.
func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if err := c.Base.BeforeCreate(tx); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(c.Name)
	if c.EntityType == "" {
		c.EntityType = taxengine.EntityLTD
	}
	if c.VentureCount < 1 {
		c.VentureCount = 1
	}
	return nil
}

// SavingsProfile builds the analyzer profile from the stored company and
// the year's turnover and profit.
func (c *Company) SavingsProfile(turnover, profit float64) taxengine.SavingsProfile {
	return taxengine.SavingsProfile{
		EntityType:   c.EntityType,
		Sector:       c.Sector,
		Turnover:     turnover,
		Profit:       profit,
		TotalAssets:  c.TotalAssets.InexactFloat64(),
		VentureCount: c.VentureCount,
		OwnerNeeds:   c.OwnerNeeds.InexactFloat64(),
	}
}
