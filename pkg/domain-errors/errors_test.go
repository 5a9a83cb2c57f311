package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("matches outermost code through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("apply: %w", New(CodeCapacityExceeded, "event is full"))
		assert.True(t, HasCode(err, CodeCapacityExceeded))
		assert.False(t, HasCode(err, CodeConflict))
	})

	t.Run("wrapped cause keeps outer code", func(t *testing.T) {
		cause := New(CodeNotFound, "row missing")
		err := Wrap(cause, CodeInternal, "failed to load event")
		assert.True(t, HasCode(err, CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(err))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.False(t, HasCode(nil, CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeNotFound:         http.StatusNotFound,
		CodeForbidden:        http.StatusForbidden,
		CodeAlreadyCheckedIn: http.StatusConflict,
		CodeCapacityExceeded: http.StatusConflict,
		CodeEventNotEnded:    http.StatusUnprocessableEntity,
		CodeNoOpenSession:    http.StatusUnprocessableEntity,
		CodeValidation:       http.StatusBadRequest,
		CodeInternal:         http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), "code %s", code)
	}
}
