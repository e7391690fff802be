package artifacts

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilenameFormat(t *testing.T) {
	c := NewCapturer(nil, t.TempDir(), nil)

	name := c.filename("TestLoginFailure", "FAIL")
	assert.Regexp(t, regexp.MustCompile(`^FAIL_TestLoginFailure_\d{8}_\d{6}\.png$`), name)

	name = c.filename("inventory", "")
	assert.Regexp(t, regexp.MustCompile(`^inventory_\d{8}_\d{6}\.png$`), name)
}
