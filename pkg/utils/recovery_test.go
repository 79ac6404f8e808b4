package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverAsError(t *testing.T) {
	t.Run("recovers from panic", func(t *testing.T) {
		fn := func() (err error) {
			defer RecoverAsError(&err)
			panic("test panic")
		}

		err := fn()
		var panicErr *PanicError
		require.ErrorAs(t, err, &panicErr)
		assert.Equal(t, "test panic", panicErr.Value)
		assert.NotEmpty(t, panicErr.StackTrace)
		assert.Equal(t, "panic: test panic", err.Error())
	})

	t.Run("no error when no panic", func(t *testing.T) {
		fn := func() (err error) {
			defer RecoverAsError(&err)
			return nil
		}
		assert.NoError(t, fn())
	})

	t.Run("preserves original error", func(t *testing.T) {
		originalErr := errors.New("original error")
		fn := func() (err error) {
			defer RecoverAsError(&err)
			return originalErr
		}
		assert.Same(t, originalErr, fn())
	})

	t.Run("unwraps error values", func(t *testing.T) {
		cause := errors.New("cause")
		fn := func() (err error) {
			defer RecoverAsError(&err)
			panic(cause)
		}
		assert.ErrorIs(t, fn(), cause)
	})
}

func TestRecoverWithCallback(t *testing.T) {
	t.Run("calls callback on panic", func(t *testing.T) {
		var captured error
		func() {
			defer RecoverWithCallback(func(err error) {
				captured = err
			})
			panic("callback test")
		}()

		var panicErr *PanicError
		require.ErrorAs(t, captured, &panicErr)
		assert.Equal(t, "callback test", panicErr.Value)
	})

	t.Run("nil callback", func(t *testing.T) {
		assert.NotPanics(t, func() {
			defer RecoverWithCallback(nil)
			panic("ignored")
		})
	})
}
