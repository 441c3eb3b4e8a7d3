package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meyvali/backoffice/internal/repository/settings"
	"github.com/meyvali/backoffice/internal/repository/workbook"
	"github.com/meyvali/backoffice/internal/service/records"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		reason string
	}{
		{"storage", fmt.Errorf("save product: %w", workbook.ErrStorageUnavailable), http.StatusServiceUnavailable, ReasonStorageUnavailable},
		{"sheet", fmt.Errorf("summary sheet: %w", workbook.ErrSheetNotFound), http.StatusInternalServerError, ReasonSheetNotFound},
		{"record", fmt.Errorf("delete: %w", workbook.ErrRecordNotFound), http.StatusNotFound, ReasonRecordNotFound},
		{"column", settings.ErrColumnNotFound, http.StatusNotFound, ReasonRecordNotFound},
		{"validation", fmt.Errorf("%w: date is required", records.ErrInvalidRecord), http.StatusBadRequest, ReasonInvalidRequest},
		{"category", records.ErrUnknownCategory, http.StatusBadRequest, ReasonInvalidRequest},
		{"upload", workbook.ErrInvalidWorkbook, http.StatusBadRequest, ReasonInvalidRequest},
		{"other", errors.New("boom"), http.StatusInternalServerError, ReasonInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, reason := classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestDecodeImage(t *testing.T) {
	img, warning := decodeImage("")
	assert.Nil(t, img)
	assert.Empty(t, warning)

	img, warning = decodeImage("not a data url")
	assert.Nil(t, img)
	assert.Contains(t, warning, "image:")

	img, warning = decodeImage("data:image/png;base64,aGVsbG8=")
	assert.Empty(t, warning)
	if assert.NotNil(t, img) {
		assert.Equal(t, "image/png", img.MIMEType)
		assert.Equal(t, []byte("hello"), img.Data)
	}
}
