package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "cerro la sesion", Normalize("  Cerró   LA\nSesión "))
	assert.Equal(t, "", Normalize(" \t\n"))
	assert.Equal(t, "anos despues", Normalize("Años después"))
}

func TestContentHash(t *testing.T) {
	base := ContentHash("El directorio cerró la sesión.")
	assert.Equal(t, base, ContentHash("el directorio  CERRO la sesion."))
	assert.NotEqual(t, base, ContentHash("El directorio abrió la sesión."))
	assert.Equal(t, ContentHash("x"), ContentHash("x"), "hash must be deterministic")
}
