package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	wrapped := fmt.Errorf("loading company: %w", ErrCompanyNotFound)
	appErr, ok := From(wrapped)
	assert.True(t, ok)
	assert.Equal(t, "COMPANY_NOT_FOUND", appErr.Code)

	appErr, ok = From(fmt.Errorf("boom"))
	assert.False(t, ok)
	assert.Equal(t, ErrInternalServer, appErr)
}

func TestWrapKeepsSentinelFields(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(ErrReportFailed, cause)

	assert.Equal(t, ErrReportFailed.Code, err.Code)
	assert.Equal(t, ErrReportFailed.StatusCode, err.StatusCode)
	assert.ErrorIs(t, err, cause)
}

func TestWithMessage(t *testing.T) {
	err := WithMessage(ErrBulkTooLarge, "at most 10 rows")
	assert.Equal(t, "BULK_TOO_LARGE", err.Code)
	assert.Equal(t, "at most 10 rows", err.Error())
	assert.Equal(t, 413, err.StatusCode)
}
