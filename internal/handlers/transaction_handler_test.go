package handlers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "naijatax/internal/errors"
	"naijatax/internal/models"
	"naijatax/internal/pagination"
	"naijatax/internal/services"
	"naijatax/internal/taxengine"
)

// --- mock transaction service ---

type mockTransactionService struct {
	createTransactionFn      func(userID, companyID string, in services.TransactionInput) (*models.Transaction, error)
	bulkCreateTransactionsFn func(userID, companyID string, in []services.TransactionInput) ([]models.Transaction, error)
	importTransactionsFn     func(companyID string, in []services.TransactionInput) ([]models.Transaction, error)
	getCompanyTransactionsFn func(userID, companyID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	getTransactionByIDFn     func(userID, transactionID string) (*models.Transaction, error)
	updateClassificationFn   func(userID, transactionID string, in services.ClassificationUpdate) (*models.Transaction, error)
	deleteTransactionFn      func(userID, transactionID string) error
}

func (m *mockTransactionService) CreateTransaction(userID, companyID string, in services.TransactionInput) (*models.Transaction, error) {
	if m.createTransactionFn != nil {
		return m.createTransactionFn(userID, companyID, in)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) BulkCreateTransactions(userID, companyID string, in []services.TransactionInput) ([]models.Transaction, error) {
	if m.bulkCreateTransactionsFn != nil {
		return m.bulkCreateTransactionsFn(userID, companyID, in)
	}
	return []models.Transaction{}, nil
}

func (m *mockTransactionService) ImportTransactions(companyID string, in []services.TransactionInput) ([]models.Transaction, error) {
	if m.importTransactionsFn != nil {
		return m.importTransactionsFn(companyID, in)
	}
	return []models.Transaction{}, nil
}

func (m *mockTransactionService) GetCompanyTransactions(userID, companyID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.getCompanyTransactionsFn != nil {
		return m.getCompanyTransactionsFn(userID, companyID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockTransactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	if m.getTransactionByIDFn != nil {
		return m.getTransactionByIDFn(userID, transactionID)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) UpdateClassification(userID, transactionID string, in services.ClassificationUpdate) (*models.Transaction, error) {
	if m.updateClassificationFn != nil {
		return m.updateClassificationFn(userID, transactionID, in)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) DeleteTransaction(userID, transactionID string) error {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(userID, transactionID)
	}
	return nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

func setupTransactionRouter(handler *TransactionHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/companies/:id/transactions", handler.CreateTransaction)
	auth.POST("/companies/:id/transactions/bulk", handler.BulkCreateTransactions)
	auth.GET("/companies/:id/transactions", handler.GetCompanyTransactions)
	auth.GET("/transactions/:id", handler.GetTransactionByID)
	auth.PATCH("/transactions/:id", handler.UpdateClassification)
	auth.DELETE("/transactions/:id", handler.DeleteTransaction)
	return r
}

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var got services.TransactionInput
		txSvc := &mockTransactionService{
			createTransactionFn: func(_, companyID string, in services.TransactionInput) (*models.Transaction, error) {
				got = in
				return &models.Transaction{
					Base:        models.Base{ID: testTransactionID},
					CompanyID:   companyID,
					Amount:      in.Amount,
					Description: in.Description,
					TaxTag:      in.TaxTag,
				}, nil
			},
		}
		activity := &mockActivityService{}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, activity))

		rec := doRequest(r, "POST", "/companies/"+testCompanyID+"/transactions",
			`{"date":"2025-03-14","description":"Diesel","amount":-107500.50,"tax_tag":"VAT","reference":"FT123"}`)

		assertStatus(t, rec, http.StatusCreated)
		if !got.Amount.Equal(decimal.RequireFromString("-107500.50")) {
			t.Errorf("expected amount -107500.50, got %s", got.Amount)
		}
		if !got.Date.Equal(time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("expected date 2025-03-14, got %s", got.Date)
		}
		if got.Reference != "FT123" {
			t.Errorf("expected reference FT123, got %q", got.Reference)
		}
		tx := parseJSON(t, rec)["transaction"].(map[string]interface{})
		if tx["tax_tag"] != "VAT" {
			t.Errorf("expected VAT tag, got %v", tx["tax_tag"])
		}
		if len(activity.actions) != 1 || activity.actions[0] != "CREATE_TRANSACTION" {
			t.Errorf("expected CREATE_TRANSACTION activity, got %v", activity.actions)
		}
	})

	t.Run("returns 400 on invalid input", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{"missing date", `{"amount":-100}`},
			{"bad date", `{"date":"14/03/2025","amount":-100}`},
			{"unknown tag", `{"date":"2025-03-14","amount":-100,"tax_tag":"GST"}`},
			{"bad category id", `{"date":"2025-03-14","amount":-100,"category_id":"7"}`},
			{"bad preview url", `{"date":"2025-03-14","amount":-100,"preview_url":"not a url"}`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockActivityService{}))

				rec := doRequest(r, "POST", "/companies/"+testCompanyID+"/transactions", tt.body)

				assertStatus(t, rec, http.StatusBadRequest)
				assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
			})
		}
	})

	t.Run("returns 400 on zero amount from the service", func(t *testing.T) {
		txSvc := &mockTransactionService{
			createTransactionFn: func(string, string, services.TransactionInput) (*models.Transaction, error) {
				return nil, apperrors.ErrZeroAmount
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockActivityService{}))

		rec := doRequest(r, "POST", "/companies/"+testCompanyID+"/transactions", `{"date":"2025-03-14","amount":0}`)

		assertStatus(t, rec, http.StatusBadRequest)
		assertErrorCode(t, parseJSON(t, rec), "ZERO_AMOUNT")
	})
}

func TestTransactionHandler_BulkCreateTransactions(t *testing.T) {
	t.Run("reports skipped duplicates", func(t *testing.T) {
		txSvc := &mockTransactionService{
			bulkCreateTransactionsFn: func(_, _ string, in []services.TransactionInput) ([]models.Transaction, error) {
				if len(in) != 3 {
					t.Errorf("expected 3 inputs, got %d", len(in))
				}
				return []models.Transaction{{Reference: "A"}, {Reference: "B"}}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockActivityService{}))

		rec := doRequest(r, "POST", "/companies/"+testCompanyID+"/transactions/bulk", `{"transactions":[
			{"date":"2025-01-01","amount":1000,"reference":"A"},
			{"date":"2025-01-02","amount":-200,"reference":"B"},
			{"date":"2025-01-02","amount":-200,"reference":"B"}]}`)

		assertStatus(t, rec, http.StatusCreated)
		result := parseJSON(t, rec)
		if result["received"].(float64) != 3 || result["created"].(float64) != 2 || result["skipped"].(float64) != 1 {
			t.Errorf("unexpected counts: %v", result)
		}
	})

	t.Run("names the row with a bad date", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockActivityService{}))

		rec := doRequest(r, "POST", "/companies/"+testCompanyID+"/transactions/bulk",
			`{"transactions":[{"date":"2025-01-01","amount":1},{"date":"yesterday","amount":1}]}`)

		assertStatus(t, rec, http.StatusBadRequest)
		msg := parseJSON(t, rec)["error"].(map[string]interface{})["message"].(string)
		if !strings.HasPrefix(msg, "transaction 1:") {
			t.Errorf("expected message to name row 1, got %q", msg)
		}
	})

	t.Run("returns 400 on empty batch", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockActivityService{}))

		rec := doRequest(r, "POST", "/companies/"+testCompanyID+"/transactions/bulk", `{"transactions":[]}`)

		assertStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("returns 413 when the batch is too large", func(t *testing.T) {
		txSvc := &mockTransactionService{
			bulkCreateTransactionsFn: func(string, string, []services.TransactionInput) ([]models.Transaction, error) {
				return nil, apperrors.ErrBulkTooLarge
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockActivityService{}))

		rec := doRequest(r, "POST", "/companies/"+testCompanyID+"/transactions/bulk",
			`{"transactions":[{"date":"2025-01-01","amount":1}]}`)

		assertStatus(t, rec, http.StatusRequestEntityTooLarge)
		assertErrorCode(t, parseJSON(t, rec), "BULK_TOO_LARGE")
	})
}

func TestTransactionHandler_GetCompanyTransactions(t *testing.T) {
	t.Run("parses filters", func(t *testing.T) {
		categoryID := "01927f4e-8a00-7000-8000-0000000000b1"
		txSvc := &mockTransactionService{
			getCompanyTransactionsFn: func(_, _ string, _ pagination.PageRequest, f services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
				if f.FromDate == nil || f.FromDate.Format(time.DateOnly) != "2025-01-01" {
					t.Errorf("expected from_date 2025-01-01, got %v", f.FromDate)
				}
				if f.AuditStatus == nil || *f.AuditStatus != taxengine.AuditStatusFail {
					t.Errorf("expected audit_status fail, got %v", f.AuditStatus)
				}
				if f.TaxTag == nil || *f.TaxTag != taxengine.TaxTagOwnerLoan {
					t.Errorf("expected Owner Loan tag, got %v", f.TaxTag)
				}
				if f.CategoryID == nil || *f.CategoryID != categoryID {
					t.Errorf("expected category filter, got %v", f.CategoryID)
				}
				if f.ToDate != nil {
					t.Errorf("expected no to_date, got %v", f.ToDate)
				}
				resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
				return &resp, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockActivityService{}))

		rec := doRequest(r, "GET", "/companies/"+testCompanyID+"/transactions?from_date=2025-01-01&audit_status=fail&tax_tag=Owner%20Loan&category_id="+categoryID, "")

		assertStatus(t, rec, http.StatusOK)
	})

	t.Run("rejects bad filters", func(t *testing.T) {
		for _, query := range []string{"from_date=jan", "to_date=2025-13-01", "audit_status=ok", "tax_tag=vat", "category_id=3"} {
			t.Run(query, func(t *testing.T) {
				r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockActivityService{}))

				rec := doRequest(r, "GET", "/companies/"+testCompanyID+"/transactions?"+query, "")

				assertStatus(t, rec, http.StatusBadRequest)
			})
		}
	})
}

func TestTransactionHandler_GetTransactionByID(t *testing.T) {
	t.Run("returns 404 when missing", func(t *testing.T) {
		txSvc := &mockTransactionService{
			getTransactionByIDFn: func(string, string) (*models.Transaction, error) {
				return nil, apperrors.ErrTransactionNotFound
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockActivityService{}))

		rec := doRequest(r, "GET", "/transactions/"+testTransactionID, "")

		assertStatus(t, rec, http.StatusNotFound)
		assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_NOT_FOUND")
	})
}

func TestTransactionHandler_UpdateClassification(t *testing.T) {
	t.Run("forwards a cleared category", func(t *testing.T) {
		txSvc := &mockTransactionService{
			updateClassificationFn: func(_, _ string, in services.ClassificationUpdate) (*models.Transaction, error) {
				if in.CategoryID == nil || *in.CategoryID != "" {
					t.Errorf("expected empty category id, got %v", in.CategoryID)
				}
				if in.TaxTag == nil || *in.TaxTag != taxengine.TaxTagPersonal {
					t.Errorf("expected Personal tag, got %v", in.TaxTag)
				}
				return &models.Transaction{TaxTag: *in.TaxTag}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockActivityService{}))

		rec := doRequest(r, "PATCH", "/transactions/"+testTransactionID, `{"category_id":"","tax_tag":"Personal"}`)

		assertStatus(t, rec, http.StatusOK)
	})
}

func TestTransactionHandler_DeleteTransaction(t *testing.T) {
	t.Run("returns 204 on success", func(t *testing.T) {
		activity := &mockActivityService{}
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, activity))

		rec := doRequest(r, "DELETE", "/transactions/"+testTransactionID, "")

		assertStatus(t, rec, http.StatusNoContent)
		if len(activity.actions) != 1 || activity.actions[0] != "DELETE_TRANSACTION" {
			t.Errorf("expected DELETE_TRANSACTION activity, got %v", activity.actions)
		}
	})

	t.Run("returns 400 on malformed id", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockActivityService{}))

		rec := doRequest(r, "DELETE", "/transactions/abc", "")

		assertStatus(t, rec, http.StatusBadRequest)
	})
}
