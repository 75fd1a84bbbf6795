// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"naijatax/internal/taxengine"
)

// tinRegex accepts FIRS TINs such as 12345678-0001 and bare 10-13 digit JTB TINs.
var tinRegex = regexp.MustCompile(`^(\d{8}-\d{4}|\d{10,13})$`)

var (
	taxTags = set(
		taxengine.TaxTagNone, taxengine.TaxTagVAT, taxengine.TaxTagWHT, taxengine.TaxTagNonDeductible,
		taxengine.TaxTagOwnerLoan, taxengine.TaxTagPersonal, taxengine.TaxTagCapitalGain,
	)
	entityTypes    = set(taxengine.EntityLTD, taxengine.EntitySole, taxengine.EntityPartnership)
	documentStates = set(taxengine.DocumentMissing, taxengine.DocumentPending, taxengine.DocumentVerified, taxengine.DocumentRejected)
	auditStates    = set(taxengine.AuditStatusPass, taxengine.AuditStatusReview, taxengine.AuditStatusFail)
)

func set[T ~string](values ...T) map[string]bool {
	out := make(map[string]bool, len(values))
	for _, v := range values {
		out[string(v)] = true
	}
	return out
}

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("tax_tag", oneOf(taxTags))
		_ = v.RegisterValidation("entity_type", oneOf(entityTypes))
		_ = v.RegisterValidation("document_status", oneOf(documentStates))
		_ = v.RegisterValidation("audit_status", oneOf(auditStates))
		_ = v.RegisterValidation("wht_type", validateWHTType)
		_ = v.RegisterValidation("category_type", validateCategoryType)
		_ = v.RegisterValidation("tin", validateTIN)
	}
}

func oneOf(allowed map[string]bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return allowed[fl.Field().String()]
	}
}

func validateWHTType(fl validator.FieldLevel) bool {
	return taxengine.IsKnownWHTType(taxengine.WHTType(fl.Field().String()))
}

func validateCategoryType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "income", "expense":
		return true
	}
	return false
}

func validateTIN(fl validator.FieldLevel) bool {
	return tinRegex.MatchString(fl.Field().String())
}
