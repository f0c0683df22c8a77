package faq

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/errors"
)

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in   string
		want Method
	}{
		{"tfidf", MethodTFIDF},
		{" BOW ", MethodBOW},
		{"Bm25", MethodBM25},
		{"boolean\n", MethodBoolean},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMethod(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMethodInvalid(t *testing.T) {
	for _, in := range []string{"", "lsa", "all", "vector"} {
		_, err := ParseMethod(in)
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidMethod), in)
	}
}

func TestMethodHelpers(t *testing.T) {
	assert.True(t, MethodTFIDF.IsVector())
	assert.True(t, MethodBOW.IsVector())
	assert.False(t, MethodBM25.IsVector())
	assert.False(t, Method("x").Valid())
	assert.Len(t, Methods(), 4)
}

func TestNormalizeTopic(t *testing.T) {
	tests := map[string]string{
		"web_sports":         "sports",
		"  Machine Learning": "machine_learning",
		"WEB_Health":         "health",
		"account":            "account",
		"web_web_x":          "web_x",
		"":                   "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeTopic(in), in)
	}
}

func TestFormatTopicName(t *testing.T) {
	assert.Equal(t, "Machine Learning", FormatTopicName("web_machine_learning"))
	assert.Equal(t, "Greeting", FormatTopicName("greeting"))
	assert.Equal(t, "All", FormatTopicName("all"))
}

func TestAvailableTopics(t *testing.T) {
	examples := []Example{
		{Tag: "web_sports"},
		{Tag: "greeting"},
		{Tag: "Sports"},
		{Tag: "  "},
	}
	assert.Equal(t, []string{"greeting", "sports"}, AvailableTopics(examples))
}

func TestSummarizeTopics(t *testing.T) {
	examples := []Example{
		{Tag: "greeting", Pattern: "hi"},
		{Tag: "greeting", Pattern: "hello"},
		{Tag: "greeting", Pattern: "hi"},
		{Tag: "greeting", Pattern: "hey"},
		{Tag: "greeting", Pattern: "yo"},
		{Tag: "web_food", Pattern: "best pizza?"},
		{Tag: "web_food", Pattern: ""},
	}
	got := SummarizeTopics(examples, 3)
	require.Len(t, got, 2)
	assert.Equal(t, TopicSummary{Topic: "food", Questions: 1, Samples: []string{"best pizza?"}}, got[0])
	assert.Equal(t, "greeting", got[1].Topic)
	assert.Equal(t, 4, got[1].Questions)
	assert.Equal(t, []string{"hi", "hello", "hey"}, got[1].Samples)
}

func TestClasses(t *testing.T) {
	examples := []Example{{Tag: "b"}, {Tag: "a"}, {Tag: "b"}}
	assert.Equal(t, []string{"a", "b"}, Classes(examples))
}

func TestResolveTopic(t *testing.T) {
	examples := []Example{{Tag: "web_machine_learning"}, {Tag: "greeting"}}

	for _, in := range []string{"", "all", " ALL "} {
		got, err := ResolveTopic(examples, in)
		require.NoError(t, err)
		assert.Equal(t, TopicAll, got)
	}

	got, err := ResolveTopic(examples, "Machine Learning")
	require.NoError(t, err)
	assert.Equal(t, "machine_learning", got)

	_, err = ResolveTopic(examples, "sports")
	assert.True(t, errors.Is(err, apperrors.ErrUnknownTopic))
}
