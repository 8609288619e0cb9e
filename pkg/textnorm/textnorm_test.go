package textnorm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/agro-trazabilidad-api/pkg/textnorm"
)

func TestFold_QuitaTildesYMayusculas(t *testing.T) {
	assert.Equal(t, "cafe organico", textnorm.Fold("Café Orgánico"))
	assert.Equal(t, "nino", textnorm.Fold("NIÑO"))
}

func TestContains(t *testing.T) {
	assert.True(t, textnorm.Contains("Lote de CAFÉ pergamino", "cafe"))
	assert.True(t, textnorm.Contains("cualquier cosa", "  "))
	assert.False(t, textnorm.Contains("maíz amarillo", "trigo"))
}
