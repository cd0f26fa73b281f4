package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortCandidates_BreaksTiesByProductID(t *testing.T) {
	c := []Candidate{
		{ProductID: "c", Score: 0.5},
		{ProductID: "b", Score: 0.9},
		{ProductID: "a", Score: 0.5},
		{ProductID: "d", Score: 0.7},
	}

	SortCandidates(c)

	assert.Equal(t, []Candidate{
		{ProductID: "b", Score: 0.9},
		{ProductID: "d", Score: 0.7},
		{ProductID: "a", Score: 0.5},
		{ProductID: "c", Score: 0.5},
	}, c)
}

func TestRetrieval_Empty(t *testing.T) {
	var nilRetrieval *Retrieval
	assert.True(t, nilRetrieval.Empty())
	assert.Equal(t, "", nilRetrieval.Text())
	assert.Nil(t, nilRetrieval.ProductIDs())

	r := &Retrieval{Query: "anything"}
	assert.True(t, r.Empty())
}

func TestRetrieval_TextPreservesRankOrder(t *testing.T) {
	r := &Retrieval{
		Query: "trail",
		Blocks: []ContextBlock{
			{ProductID: "A", Score: 0.9, Text: "Product ID: A"},
			{ProductID: "B", Score: 0.7, Text: "Product ID: B"},
		},
	}

	assert.False(t, r.Empty())
	assert.Equal(t, "Product ID: A"+BlockDelimiter+"Product ID: B", r.Text())
	assert.Equal(t, []ProductID{"A", "B"}, r.ProductIDs())
}

func TestIngestReport_Skipped(t *testing.T) {
	r := &IngestReport{Records: 3, Products: 2, Errors: []*IngestionError{{Position: 1, Reason: "x"}}}
	assert.Equal(t, 1, r.Skipped())
}
