package validator

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type payload struct {
	Tag      string `binding:"omitempty,tax_tag"`
	Entity   string `binding:"omitempty,entity_type"`
	Document string `binding:"omitempty,document_status"`
	Audit    string `binding:"omitempty,audit_status"`
	WHT      string `binding:"omitempty,wht_type"`
	Category string `binding:"omitempty,category_type"`
	TIN      string `binding:"omitempty,tin"`
}

func TestRegister(t *testing.T) {
	Register()
	v := binding.Validator.Engine().(*validator.Validate)

	valid := []payload{
		{Tag: "Owner Loan"},
		{Tag: "Non-deductible"},
		{Entity: "PARTNERSHIP"},
		{Document: "verified"},
		{Audit: "review"},
		{WHT: "Consultancy"},
		{Category: "expense"},
		{TIN: "12345678-0001"},
		{TIN: "1234567890"},
	}
	for _, p := range valid {
		assert.NoError(t, v.Struct(p), "%+v", p)
	}

	invalid := []payload{
		{Tag: "vat"},
		{Entity: "PLC"},
		{Document: "approved"},
		{Audit: "ok"},
		{WHT: "Salary"},
		{Category: "transfer"},
		{TIN: "TIN-1"},
	}
	for _, p := range invalid {
		assert.Error(t, v.Struct(p), "%+v", p)
	}
}
