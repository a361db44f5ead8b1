package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func parseQuery(t *testing.T, query string) Params {
	t.Helper()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return Parse(c)
}

func TestParseDefaults(t *testing.T) {
	p := parseQuery(t, "")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 0, p.Offset())
}

func TestParseExplicitValues(t *testing.T) {
	p := parseQuery(t, "page=3&limit=50")
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 50, p.Limit)
	assert.Equal(t, 100, p.Offset())
}

func TestParseClampsAndRecovers(t *testing.T) {
	p := parseQuery(t, "page=0&limit=0")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.Limit)

	p = parseQuery(t, "page=-2&limit=10000")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.Limit)

	p = parseQuery(t, "page=abc&limit=xyz")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.Limit)
}
