package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQuoteLiteralEscapesQuotes(t *testing.T) {
	require.Equal(t, "O''Brien", quoteLiteral("O'Brien"))
	require.Equal(t, "'' OR ''1''=''1", quoteLiteral("' OR '1'='1"))
	require.Equal(t, "plain", quoteLiteral("plain"))
}

func TestQuoteLiteralDropsNulBytes(t *testing.T) {
	require.Equal(t, "ab", quoteLiteral("a\x00b"))
}

func TestQuoteList(t *testing.T) {
	require.Equal(t, "a','b", quoteList([]string{"a", "b"}))
	require.Equal(t, "it''s", quoteList([]string{"it's"}))
	require.Equal(t, "", quoteList(nil))
}
