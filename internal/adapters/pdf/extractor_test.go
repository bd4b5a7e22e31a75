// internal/adapters/pdf/extractor_test.go
package pdf

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bilalmachraa82/propdocs/test/helpers"
)

func TestNewExtractor_DefaultFloor(t *testing.T) {
	e := NewExtractor(0, helpers.TestLogger())
	assert.Equal(t, MinTextLength, e.minLength)

	e = NewExtractor(200, helpers.TestLogger())
	assert.Equal(t, 200, e.minLength)
}

func TestExtractText_MissingFile(t *testing.T) {
	e := NewExtractor(0, helpers.TestLogger())

	_, err := e.ExtractText(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))

	assert.Error(t, err)
}

func TestExtractText_NotAPDF(t *testing.T) {
	e := NewExtractor(0, helpers.TestLogger())
	path := helpers.CreateTempFile(t, []byte("plain text masquerading as a document"), ".pdf")

	_, err := e.ExtractText(context.Background(), path)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open PDF")
}
