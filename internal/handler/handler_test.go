package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampPaging(t *testing.T) {
	page, limit := clampPaging(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, defaultPageLimit, limit)

	page, limit = clampPaging(-3, -10)
	assert.Equal(t, 1, page)
	assert.Equal(t, defaultPageLimit, limit)

	page, limit = clampPaging(5, 50)
	assert.Equal(t, 5, page)
	assert.Equal(t, 50, limit)

	_, limit = clampPaging(1, 500)
	assert.Equal(t, maxPageLimit, limit)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, totalPages(0, 20))
	assert.Equal(t, 1, totalPages(1, 20))
	assert.Equal(t, 1, totalPages(20, 20))
	assert.Equal(t, 2, totalPages(21, 20))
	assert.Equal(t, 5, totalPages(100, 20))
}

func TestOriginAllowed(t *testing.T) {
	allowed := []string{"https://acme.example", "https://widgets.example"}

	assert.True(t, originAllowed("https://acme.example", allowed))
	assert.False(t, originAllowed("https://evil.example", allowed))

	// No Origin header means a non-browser client; the allow-list does not apply
	assert.True(t, originAllowed("", allowed))

	// An empty allow-list accepts everything
	assert.True(t, originAllowed("https://anywhere.example", nil))
}
