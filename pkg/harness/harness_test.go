package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeTestName(t *testing.T) {
	assert.Equal(t, "TestLogin_locked_out", SanitizeTestName("TestLogin/locked out"))
	assert.Equal(t, "TestSimple", SanitizeTestName("TestSimple"))
	assert.Equal(t, "a_b_c_d", SanitizeTestName(`a/b\c:d`))
}

func TestURLJoining(t *testing.T) {
	e := &Env{baseURL: "http://127.0.0.1:8080/"}
	assert.Equal(t, "http://127.0.0.1:8080/inventory.html", e.URL("/inventory.html"))
	assert.Equal(t, "http://127.0.0.1:8080/slow", e.URL("slow"))
	assert.Equal(t, "http://127.0.0.1:8080/", e.BaseURL())
}
