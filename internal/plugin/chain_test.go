package plugin

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/handlink/internal/action"
)

func sample(x, y float64) action.InputAction {
	return action.InputAction{
		InteractionType: action.InteractionHover,
		HandType:        action.HandPrimary,
		InputType:       action.InputMove,
		CursorPosition:  action.Point{X: x, Y: y},
	}
}

func shift(name string, dx float64) Plugin {
	return Func{ID: name, Fn: func(a action.InputAction) (action.InputAction, error) {
		a.CursorPosition.X += dx
		return a, nil
	}}
}

func TestChain_Run(t *testing.T) {
	t.Run("empty chain passes through", func(t *testing.T) {
		res := Chain(nil).Run(sample(1, 2))
		assert.Equal(t, Passed, res.Outcome)
		assert.Equal(t, sample(1, 2), res.Action)
	})

	t.Run("plugins see previous output in order", func(t *testing.T) {
		var seen []float64
		record := Func{ID: "record", Fn: func(a action.InputAction) (action.InputAction, error) {
			seen = append(seen, a.CursorPosition.X)
			return a, nil
		}}

		res := Chain{shift("one", 1), record, shift("ten", 10), record}.Run(sample(0, 0))
		assert.Equal(t, Passed, res.Outcome)
		assert.Equal(t, 11.0, res.Action.CursorPosition.X)
		assert.Equal(t, []float64{1, 11}, seen)
	})

	t.Run("suppression short-circuits", func(t *testing.T) {
		after := false
		res := Chain{
			NewFilter("drop-move", FilterConfig{InputTypes: []action.InputType{action.InputMove}}),
			Func{ID: "after", Fn: func(a action.InputAction) (action.InputAction, error) {
				after = true
				return a, nil
			}},
		}.Run(sample(0, 0))

		assert.Equal(t, Suppressed, res.Outcome)
		assert.Equal(t, "drop-move", res.Plugin)
		assert.NoError(t, res.Err)
		assert.False(t, after)
	})

	t.Run("error is a fault", func(t *testing.T) {
		boom := errors.New("boom")
		res := Chain{Func{ID: "bad", Fn: func(action.InputAction) (action.InputAction, error) {
			return action.InputAction{}, boom
		}}}.Run(sample(0, 0))

		assert.Equal(t, Faulted, res.Outcome)
		var fault *FaultError
		require.ErrorAs(t, res.Err, &fault)
		assert.Equal(t, "bad", fault.Plugin)
		assert.ErrorIs(t, res.Err, boom)
	})

	t.Run("panic is a fault", func(t *testing.T) {
		res := Chain{Func{ID: "panics", Fn: func(action.InputAction) (action.InputAction, error) {
			panic("nil target")
		}}}.Run(sample(0, 0))

		assert.Equal(t, Faulted, res.Outcome)
		assert.Contains(t, res.Err.Error(), "nil target")
	})

	t.Run("wrapped suppression", func(t *testing.T) {
		res := Chain{Func{ID: "wrap", Fn: func(action.InputAction) (action.InputAction, error) {
			return action.InputAction{}, errors.Join(ErrSuppressed, errors.New("outside zone"))
		}}}.Run(sample(0, 0))
		assert.Equal(t, Suppressed, res.Outcome)
	})
}

func TestNoop(t *testing.T) {
	n := NewNoop("")
	assert.Equal(t, "noop", n.Name())
	out, err := n.Transform(sample(3, 4))
	require.NoError(t, err)
	assert.Equal(t, sample(3, 4), out)
}

func TestFilter(t *testing.T) {
	f := NewFilter("f", FilterConfig{
		InteractionTypes: []action.InteractionType{action.InteractionGrab},
		HandTypes:        []action.HandType{action.HandSecondary},
	})

	_, err := f.Transform(sample(0, 0))
	assert.NoError(t, err)

	grab := sample(0, 0)
	grab.InteractionType = action.InteractionGrab
	_, err = f.Transform(grab)
	assert.ErrorIs(t, err, ErrSuppressed)

	secondary := sample(0, 0)
	secondary.HandType = action.HandSecondary
	_, err = f.Transform(secondary)
	assert.ErrorIs(t, err, ErrSuppressed)
}
