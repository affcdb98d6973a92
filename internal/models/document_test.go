package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/margies-travel/docsearch/internal/models"
	"github.com/stretchr/testify/require"
)

func sampleDocument(t *testing.T) models.Document {
	t.Helper()

	raw := `{
		"@search.score": 1.62,
		"@search.highlights": {
			"merged_content": ["a <em>budget</em> hotel", "the <em>budget</em> meeting"],
			"imageCaption": ["a person holding a <em>budget</em>"]
		},
		"metadata_storage_name": "Margies Brochure.pdf",
		"metadata_author": "jsmith",
		"metadata_storage_size": 512000,
		"metadata_storage_last_modified": "2024-03-07T14:30:00Z",
		"language": "en",
		"keyphrases": ["travel budget", "hotel rates"],
		"sentiment": 0.83
	}`

	var doc models.Document
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return doc
}

func TestDocumentAccessors(t *testing.T) {
	doc := sampleDocument(t)

	require.Equal(t, "Margies Brochure.pdf", doc.Str("metadata_storage_name"))
	require.Equal(t, "jsmith", doc.Str("metadata_author"))
	require.InDelta(t, 512000, doc.Float("metadata_storage_size"), 0.001)
	require.InDelta(t, 0.83, doc.Float("sentiment"), 0.001)
	require.Equal(t, []string{"travel budget", "hotel rates"}, doc.Strs("keyphrases"))
	require.InDelta(t, 1.62, doc.Score(), 0.001)

	modified := doc.Time("metadata_storage_last_modified")
	require.Equal(t, time.Date(2024, 3, 7, 14, 30, 0, 0, time.UTC), modified)
}

func TestDocumentHighlights(t *testing.T) {
	doc := sampleDocument(t)

	require.Equal(t,
		[]string{"a <em>budget</em> hotel", "the <em>budget</em> meeting"},
		doc.Highlights("merged_content"))
	require.Equal(t,
		[]string{"a person holding a <em>budget</em>"},
		doc.Highlights("imageCaption"))
	require.Nil(t, doc.Highlights("keyphrases"))
}

func TestDocumentMissingAndMistypedFields(t *testing.T) {
	doc := models.Document{
		"metadata_storage_size": "not a number",
		"keyphrases":            "not a list",
	}

	require.True(t, doc.Has("metadata_storage_size"))
	require.False(t, doc.Has("metadata_author"))
	require.Empty(t, doc.Str("metadata_author"))
	require.Zero(t, doc.Float("metadata_storage_size"))
	require.Nil(t, doc.Strs("keyphrases"))
	require.Nil(t, doc.Highlights("merged_content"))
	require.True(t, doc.Time("metadata_storage_last_modified").IsZero())
	require.Zero(t, doc.Score())
}

func TestDocumentStrsSkipsNonStrings(t *testing.T) {
	doc := models.Document{"locations": []any{"Paris", 12, "Dubai"}}
	require.Equal(t, []string{"Paris", "Dubai"}, doc.Strs("locations"))
}
