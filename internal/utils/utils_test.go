package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("sekret1")
	require.NoError(t, err)
	assert.NotEqual(t, "sekret1", hash)

	assert.True(t, CheckPasswordHash("sekret1", hash))
	assert.False(t, CheckPasswordHash("sekret2", hash))
	assert.False(t, CheckPasswordHash("sekret1", "not-a-hash"))
}

func TestGenerateRandomCode(t *testing.T) {
	code := GenerateRandomCode(6)
	require.Len(t, code, 6)
	for _, c := range code {
		assert.True(t, c >= '0' && c <= '9')
	}
}

func TestGenerateInviteCode(t *testing.T) {
	a, b := GenerateInviteCode(), GenerateInviteCode()
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "-")
}

func TestParseID(t *testing.T) {
	id, ok := ParseID("42")
	assert.True(t, ok)
	assert.EqualValues(t, 42, id)

	for _, bad := range []string{"0", "-1", "abc", "", "1.5"} {
		_, ok := ParseID(bad)
		assert.False(t, ok, "ParseID(%q)", bad)
	}
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "hello", StripHTML("<script>alert(1)</script>hello"))
	assert.Equal(t, "bold move", StripHTML("  <b>bold</b> move  "))
	assert.Equal(t, "plain", StripHTML("plain"))
}

func TestRenderMarkdownSanitizes(t *testing.T) {
	out := RenderMarkdown("**bold** and <script>alert(1)</script>")
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.NotContains(t, out, "<script>")

	out = RenderMarkdown("[link](https://example.com)")
	assert.Contains(t, out, `href="https://example.com"`)
	assert.Contains(t, out, `target="_blank"`)
}

func TestTTLCache(t *testing.T) {
	c, err := NewTTLCache(2)
	require.NoError(t, err)

	c.Set("a", "value", time.Minute)
	assert.Equal(t, "value", c.Get("a"))

	c.Set("b", "expired", -time.Second)
	assert.Nil(t, c.Get("b"), "entries past their ttl read as missing")

	c.Delete("a")
	assert.Nil(t, c.Get("a"))

	// LRU bound: inserting past capacity evicts the oldest entry.
	c.Set("x", 1, time.Minute)
	c.Set("y", 2, time.Minute)
	c.Set("z", 3, time.Minute)
	assert.Nil(t, c.Get("x"))
	assert.Equal(t, 3, c.Get("z"))
}
