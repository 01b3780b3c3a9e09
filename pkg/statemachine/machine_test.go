package statemachine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/statekit/pkg/statemachine"
)

func reviewMachine(t *testing.T, opts ...statemachine.Option) (*statemachine.Definition[*document, docState], *scoreGuard) {
	t.Helper()

	guard := &scoreGuard{min: 50}
	base := []statemachine.Option{
		statemachine.WithName("review"),
		statemachine.WithTransition(draft, pending),
		statemachine.WithTransition(pending, approved, statemachine.WithHandler(guard)),
		statemachine.WithTransition(pending, rejected),
	}

	def, err := statemachine.New[*document](docStates, append(base, opts...)...)
	require.NoError(t, err)
	return def, guard
}

func TestMachine_ReviewScenario(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("low score cannot be approved but can be rejected", func(t *testing.T) {
		t.Parallel()
		def, _ := reviewMachine(t)
		doc := newDocument(pending, 30)

		m, err := def.Load(doc, "status")
		require.NoError(t, err)

		assert.False(t, m.CanTransitionTo(ctx, approved))
		require.NoError(t, m.TransitionTo(ctx, rejected))
		assert.Equal(t, rejected, m.Current())
		assert.Equal(t, rejected.Value(), doc.Attribute("status"))
		assert.Equal(t, 1, doc.persistCalls)
	})

	t.Run("high score is approved", func(t *testing.T) {
		t.Parallel()
		def, _ := reviewMachine(t)
		doc := newDocument(pending, 80)

		m, err := def.Load(doc, "status")
		require.NoError(t, err)

		require.NoError(t, m.TransitionTo(ctx, approved))
		assert.True(t, m.Is(approved))
		assert.Equal(t, 1, doc.persistCalls)
	})

	t.Run("draft to pending", func(t *testing.T) {
		t.Parallel()
		def, _ := reviewMachine(t)
		doc := newDocument(draft, 0)

		m, err := def.Load(doc, "status")
		require.NoError(t, err)
		require.NoError(t, m.TransitionTo(ctx, pending))
		assert.Equal(t, pending, m.Current())
	})
}

func TestMachine_Accessors(t *testing.T) {
	t.Parallel()
	def, _ := reviewMachine(t)
	doc := newDocument(approved, 0)

	m, err := def.Load(doc, "status")
	require.NoError(t, err)

	assert.Equal(t, approved, m.Current())
	assert.Equal(t, "3", m.Value())
	assert.Equal(t, "Approved", m.Name())
	assert.Equal(t, "Approved", m.String())
	assert.Equal(t, "status", m.Attribute())
	assert.Same(t, doc, m.Entity())
	assert.Same(t, def, m.Definition())
	assert.True(t, m.Is(approved))
	assert.False(t, m.Is(draft))
}

func TestMachine_Load(t *testing.T) {
	t.Parallel()
	def, _ := reviewMachine(t)

	t.Run("unknown raw value", func(t *testing.T) {
		t.Parallel()
		doc := &document{attrs: map[string]string{"status": "42"}}

		m, err := def.Load(doc, "status")
		require.Error(t, err)
		assert.Nil(t, m)
		assert.ErrorIs(t, err, statemachine.ErrInvalidState)
		assert.True(t, statemachine.IsInvalidStateError(err))
	})

	t.Run("missing attribute", func(t *testing.T) {
		t.Parallel()
		doc := &document{attrs: map[string]string{}}

		_, err := def.Load(doc, "status")
		assert.ErrorIs(t, err, statemachine.ErrInvalidState)
	})

	t.Run("wrap", func(t *testing.T) {
		t.Parallel()
		doc := newDocument(draft, 0)

		m, err := def.Wrap(doc, "status", pending)
		require.NoError(t, err)
		assert.Equal(t, pending, m.Current())

		_, err = def.Wrap(doc, "status", docState(99))
		assert.ErrorIs(t, err, statemachine.ErrInvalidState)
	})
}

func TestMachine_SelfTransition(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("not declared", func(t *testing.T) {
		t.Parallel()
		def, _ := reviewMachine(t)

		for _, s := range docStates.States() {
			m, err := def.Wrap(newDocument(s, 100), "status", s)
			require.NoError(t, err)
			assert.False(t, m.CanTransitionTo(ctx, s), "self transition of %s", s.Name())
		}
	})

	t.Run("declared explicitly", func(t *testing.T) {
		t.Parallel()
		def, _ := reviewMachine(t, statemachine.WithTransition(pending, pending))
		doc := newDocument(pending, 0)

		m, err := def.Load(doc, "status")
		require.NoError(t, err)
		assert.True(t, m.CanTransitionTo(ctx, pending))
		require.NoError(t, m.TransitionTo(ctx, pending))
		assert.Equal(t, 1, doc.persistCalls)
	})
}

func TestMachine_NotAllowed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("no rule", func(t *testing.T) {
		t.Parallel()
		def, _ := reviewMachine(t)
		doc := newDocument(draft, 100)

		m, err := def.Load(doc, "status")
		require.NoError(t, err)

		err = m.TransitionTo(ctx, approved)
		require.Error(t, err)
		assert.ErrorIs(t, err, statemachine.ErrTransitionNotAllowed)

		var notAllowed *statemachine.TransitionNotAllowedError
		require.ErrorAs(t, err, &notAllowed)
		assert.Equal(t, "Draft", notAllowed.From)
		assert.Equal(t, "Approved", notAllowed.To)
		assert.False(t, notAllowed.Rejected)

		assert.Equal(t, draft, m.Current())
		assert.Equal(t, draft.Value(), doc.Attribute("status"))
		assert.Zero(t, doc.persistCalls)
	})

	t.Run("guard rejects", func(t *testing.T) {
		t.Parallel()
		def, _ := reviewMachine(t)
		doc := newDocument(pending, 10)

		m, err := def.Load(doc, "status")
		require.NoError(t, err)

		err = m.TransitionTo(ctx, approved)
		require.True(t, statemachine.IsTransitionNotAllowedError(err))

		var notAllowed *statemachine.TransitionNotAllowedError
		require.ErrorAs(t, err, &notAllowed)
		assert.True(t, notAllowed.Rejected)
		assert.Contains(t, err.Error(), "rejected by guard")

		assert.Equal(t, pending, m.Current())
		assert.Equal(t, pending.Value(), doc.Attribute("status"))
		assert.Zero(t, doc.persistCalls)
	})
}

func TestMachine_GuardIsPure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	def, guard := reviewMachine(t)
	doc := newDocument(pending, 60)

	m, err := def.Load(doc, "status")
	require.NoError(t, err)

	first := m.CanTransitionTo(ctx, approved)
	for range 5 {
		assert.Equal(t, first, m.CanTransitionTo(ctx, approved))
	}
	assert.Equal(t, 6, guard.calls)
	assert.Zero(t, doc.persistCalls)
	assert.Equal(t, pending, m.Current())
}

func TestMachine_Handler(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("replaces default effect", func(t *testing.T) {
		t.Parallel()
		h := &recordingHandler{target: rejected}
		def, err := statemachine.New[*document](docStates,
			statemachine.WithTransition(pending, rejected, statemachine.WithHandler(h)),
		)
		require.NoError(t, err)

		doc := newDocument(pending, 0)
		m, err := def.Load(doc, "status")
		require.NoError(t, err)

		require.NoError(t, m.TransitionTo(ctx, rejected))
		assert.Equal(t, 1, h.calls)
		assert.Zero(t, doc.persistCalls)
		assert.Equal(t, rejected, m.Current())
	})

	t.Run("state is refreshed from the entity", func(t *testing.T) {
		t.Parallel()
		// The handler decides the final state on its own.
		h := &recordingHandler{target: draft}
		def, err := statemachine.New[*document](docStates,
			statemachine.WithTransition(pending, rejected, statemachine.WithHandler(h)),
		)
		require.NoError(t, err)

		m, err := def.Load(newDocument(pending, 0), "status")
		require.NoError(t, err)

		require.NoError(t, m.TransitionTo(ctx, rejected))
		assert.Equal(t, draft, m.Current())
	})

	t.Run("handler error is returned unchanged", func(t *testing.T) {
		t.Parallel()
		errBoom := errors.New("boom")
		h := &recordingHandler{target: rejected, err: errBoom}
		def, err := statemachine.New[*document](docStates,
			statemachine.WithTransition(pending, rejected, statemachine.WithHandler(h)),
		)
		require.NoError(t, err)

		m, err := def.Load(newDocument(pending, 0), "status")
		require.NoError(t, err)

		err = m.TransitionTo(ctx, rejected)
		assert.Same(t, errBoom, err)
		assert.Equal(t, pending, m.Current())
	})

	t.Run("handler writing an undeclared value", func(t *testing.T) {
		t.Parallel()
		h := statemachine.HandlerFunc[*document](func(_ context.Context, d *document) error {
			d.SetAttribute("status", "nope")
			return nil
		})
		def, err := statemachine.New[*document](docStates,
			statemachine.WithTransition(pending, rejected, statemachine.WithHandler(h)),
		)
		require.NoError(t, err)

		m, err := def.Load(newDocument(pending, 0), "status")
		require.NoError(t, err)

		err = m.TransitionTo(ctx, rejected)
		assert.ErrorIs(t, err, statemachine.ErrInvalidState)
		assert.Equal(t, pending, m.Current())
	})

	t.Run("guard and handler on one value", func(t *testing.T) {
		t.Parallel()
		h := &guardedHandler{allow: false}
		def, err := statemachine.New[*document](docStates,
			statemachine.WithTransition(pending, approved, statemachine.WithHandler(h)),
		)
		require.NoError(t, err)

		doc := newDocument(pending, 0)
		m, err := def.Load(doc, "status")
		require.NoError(t, err)

		assert.ErrorIs(t, m.TransitionTo(ctx, approved), statemachine.ErrTransitionNotAllowed)
		assert.Zero(t, h.calls)

		h.allow = true
		require.NoError(t, m.TransitionTo(ctx, approved))
		assert.Equal(t, 1, h.calls)
		assert.Zero(t, doc.persistCalls)
		assert.Equal(t, approved, m.Current())
	})
}

func TestMachine_FirstDeclaredRuleWins(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	handlerX := &recordingHandler{target: approved}
	handlerY := &recordingHandler{target: approved}

	def, err := statemachine.New[*document](docStates,
		statemachine.WithTransition(draft, approved, statemachine.WithHandler(handlerX)),
		statemachine.WithTransition(draft, approved, statemachine.WithHandler(handlerY)),
	)
	require.NoError(t, err)

	m, err := def.Load(newDocument(draft, 0), "status")
	require.NoError(t, err)
	require.NoError(t, m.TransitionTo(ctx, approved))

	assert.Equal(t, 1, handlerX.calls)
	assert.Zero(t, handlerY.calls)
}

func TestMachine_PersistFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	errStorage := errors.New("storage unavailable")

	def, _ := reviewMachine(t)
	doc := newDocument(draft, 0)
	doc.persistErr = errStorage

	m, err := def.Load(doc, "status")
	require.NoError(t, err)

	err = m.TransitionTo(ctx, pending)
	assert.Same(t, errStorage, err)
	assert.Equal(t, 1, doc.persistCalls)
	assert.Equal(t, draft, m.Current())
	assert.Equal(t, draft.Value(), doc.Attribute("status"))
}

func TestMachine_AllowedTransitions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	def, _ := reviewMachine(t, statemachine.WithTransition(pending, rejected))

	m, err := def.Load(newDocument(pending, 10), "status")
	require.NoError(t, err)
	assert.Equal(t, []docState{rejected}, m.AllowedTransitions(ctx))

	m, err = def.Load(newDocument(pending, 90), "status")
	require.NoError(t, err)
	assert.Equal(t, []docState{approved, rejected}, m.AllowedTransitions(ctx))

	m, err = def.Load(newDocument(approved, 90), "status")
	require.NoError(t, err)
	assert.Empty(t, m.AllowedTransitions(ctx))
}

func TestMachine_Observers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	obs := &recordingObserver{}
	def, _ := reviewMachine(t, statemachine.WithObserver(obs))

	m, err := def.Load(newDocument(pending, 10), "status")
	require.NoError(t, err)

	require.Error(t, m.TransitionTo(ctx, approved))
	require.NoError(t, m.TransitionTo(ctx, rejected))

	assert.Equal(t, []observed{
		{machine: "review", from: "Pending", to: "Approved"},
		{machine: "review", from: "Pending", to: "Rejected", applied: true},
	}, obs.events)
}
