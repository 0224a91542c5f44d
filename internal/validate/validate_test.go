package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	got, ok := Email("  jane@cosmetica.test ")
	assert.True(t, ok)
	assert.Equal(t, "jane@cosmetica.test", got)

	for _, bad := range []string{"", "jane", "jane@", "@x.io", "a b@c.io"} {
		_, ok := Email(bad)
		assert.False(t, ok, bad)
	}
}

func TestPage(t *testing.T) {
	assert.Equal(t, 3, Page("3", 1))
	assert.Equal(t, 1, Page("abc", 1))
	assert.Equal(t, 10, Page("0", 10))
	assert.Equal(t, 10, Page("-4", 10))
	assert.Equal(t, 10, Page("", 10))
}

func TestPassword(t *testing.T) {
	assert.False(t, Password("short"))
	assert.True(t, Password("Passw0rd!"))
	assert.False(t, Password(strings.Repeat("x", 73)))
}

func TestQ(t *testing.T) {
	q, ok := Q("  face wash ")
	assert.True(t, ok)
	assert.Equal(t, "face wash", q)

	_, ok = Q("<script>")
	assert.False(t, ok)
	_, ok = Q("   ")
	assert.False(t, ok)
}

func TestIDAndRating(t *testing.T) {
	_, ok := ID("COS-SRM-001")
	assert.True(t, ok)
	_, ok = ID("../etc")
	assert.False(t, ok)

	assert.True(t, Rating(5))
	assert.False(t, Rating(0))
	assert.False(t, Rating(6))
}
