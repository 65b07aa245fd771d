package textmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	cases := map[string]string{
		"Théâtre":       "theatre",
		"FÊTE DE LA":    "fete de la",
		"São Paulo":     "sao paulo",
		"plain ascii":   "plain ascii",
		"":              "",
		"Crêpes & Café": "crepes & cafe",
	}
	for in, want := range cases {
		assert.Equal(t, want, Fold(in), "Fold(%q)", in)
	}
}

func TestContains(t *testing.T) {
	assert.True(t, Contains("Fête de la Musique", "fete"))
	assert.True(t, Contains("Concert au Théâtre", "THEATRE"))
	assert.True(t, Contains("Marché de Noël", "noel"))
	assert.False(t, Contains("Marché de Noël", "jazz"))
}

func TestContains_EmptyQueryMatchesAll(t *testing.T) {
	assert.True(t, Contains("anything", ""))
	assert.True(t, Contains("", ""))
}
