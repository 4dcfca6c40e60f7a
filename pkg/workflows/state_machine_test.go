package workflows

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"carbon-connect/marketplace-backend/pkg/apperrors"
)

type doc string

const (
	docDraft     doc = "draft"
	docPublished doc = "published"
	docArchived  doc = "archived"
)

const (
	publish Event = "publish"
	archive Event = "archive"
)

func docMachine() *StateMachine[doc] {
	return New("document", map[doc]map[Event]doc{
		docDraft:     {publish: docPublished},
		docPublished: {archive: docArchived},
		docArchived:  {},
	})
}

func TestNextFollowsTable(t *testing.T) {
	m := docMachine()

	next, err := m.Next(docDraft, publish)

	assert.NoError(t, err)
	assert.Equal(t, docPublished, next)
}

func TestNextRejectsUnknownTransition(t *testing.T) {
	m := docMachine()

	_, err := m.Next(docDraft, archive)

	var transition *apperrors.StateTransitionError
	assert.ErrorAs(t, err, &transition)
	assert.Equal(t, "document", transition.Entity)
	assert.Equal(t, string(docDraft), transition.Current)
	assert.Equal(t, string(archive), transition.Event)
}

func TestNextRejectsUnknownState(t *testing.T) {
	m := docMachine()

	_, err := m.Next(doc("corrupted"), publish)

	var transition *apperrors.StateTransitionError
	assert.ErrorAs(t, err, &transition)
}

func TestCan(t *testing.T) {
	m := docMachine()

	assert.True(t, m.Can(docDraft, publish))
	assert.False(t, m.Can(docDraft, archive))
	assert.False(t, m.Can(docArchived, publish))
}

func TestTerminal(t *testing.T) {
	m := docMachine()

	assert.False(t, m.Terminal(docDraft))
	assert.False(t, m.Terminal(docPublished))
	assert.True(t, m.Terminal(docArchived))
	assert.True(t, m.Terminal(doc("unknown")))
}
