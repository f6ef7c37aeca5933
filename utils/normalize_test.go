package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type createDTO struct {
	Name  string
	Price float64
}

type patchDTO struct {
	Name  *string  `json:"name"`
	Price *float64 `json:"price"`
	Skip  *string  `json:"skip"`
}

func TestNormalizeDTO(t *testing.T) {
	dto := createDTO{Name: "  Halle 3  ", Price: 10.009}
	NormalizeDTO(&dto)
	assert.Equal(t, "Halle 3", dto.Name)
	assert.Equal(t, 10.01, dto.Price)

	// Non-pointer input is a no-op, not a panic.
	NormalizeDTO(dto)
}

func TestNormalizePtrDTO(t *testing.T) {
	name := "  trim me "
	price := 99.999
	dto := patchDTO{Name: &name, Price: &price}
	NormalizePtrDTO(&dto)
	assert.Equal(t, "trim me", *dto.Name)
	assert.Equal(t, 100.0, *dto.Price)
	assert.Nil(t, dto.Skip) // nils stay nil
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, Round2(1.2349))
	assert.Equal(t, 1.24, Round2(1.235))
	assert.Equal(t, -1.24, Round2(-1.235))
	assert.Equal(t, 0.0, Round2(0))
}
