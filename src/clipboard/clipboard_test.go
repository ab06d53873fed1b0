package clipboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrite(t *testing.T) {
	if err := Init(); err != nil {
		assert.True(t, errors.Is(err, ErrUnavailable))
		t.Skipf("clipboard not available: %v", err)
	}
	assert.NoError(t, Write("Paris"))
}
