package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/phrazzld/bandpath/internal/domain"
	"github.com/phrazzld/bandpath/internal/domain/planner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()
	c, err := Default()
	require.NoError(t, err)

	for _, area := range domain.FocusOrder {
		topics := c.TopicsFor(area)
		require.NotEmpty(t, topics, "area %s", area)

		hasCore := false
		for _, topic := range topics {
			assert.Equal(t, area, topic.Focus)
			assert.Positive(t, topic.Minutes())
			hasCore = hasCore || topic.Core
		}
		assert.True(t, hasCore, "area %s needs a core topic", area)
	}

	topic, ok := c.Topic("lex-collocations")
	require.True(t, ok)
	assert.Equal(t, domain.FocusLexicalResource, topic.Focus)
	_, ok = c.Topic("nope")
	assert.False(t, ok)

	all := c.All()
	assert.Equal(t, domain.FocusGrammaticalAccuracy, all[0].Focus)
	assert.Equal(t, domain.FocusOverall, all[len(all)-1].Focus)
}

func TestCatalogSatisfiesPlanner(t *testing.T) {
	t.Parallel()
	c, err := Default()
	require.NoError(t, err)

	var source planner.TopicSource = c
	topics := planner.AssignTopics(domain.FocusCoherenceCohesion, source)
	require.NotEmpty(t, topics)
	assert.Equal(t, "coh-paragraphing", topics[0].TopicID)
	assert.True(t, topics[0].Recommended)
}

func TestNewStaticRejectsBadTopics(t *testing.T) {
	t.Parallel()

	_, err := NewStatic([]domain.Topic{
		{ID: "a", Title: "A", Focus: domain.FocusOverall},
		{ID: "a", Title: "A again", Focus: domain.FocusOverall},
	})
	assert.ErrorIs(t, err, ErrDuplicateTopic)

	_, err = NewStatic([]domain.Topic{{ID: "b", Title: "B", Focus: "pronunciation"}})
	assert.ErrorIs(t, err, ErrInvalidTopic)

	_, err = NewStatic([]domain.Topic{{ID: "c", Focus: domain.FocusOverall}})
	assert.ErrorIs(t, err, ErrInvalidTopic)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "topics.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id": "x", "title": "X", "focus": "overall", "format": "mock"}
	]`), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)
	topic, ok := c.Topic("x")
	require.True(t, ok)
	assert.Equal(t, 60, topic.Minutes())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
