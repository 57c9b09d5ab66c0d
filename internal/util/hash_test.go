package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQuestionHash(t *testing.T) {
	a := QuestionHash("What's the  hottest product?")
	b := QuestionHash("  what's the hottest PRODUCT? ")
	require.Equal(t, a, b)
	require.Len(t, a, 64)
	require.NotEqual(t, a, QuestionHash("What's trending?"))
}
