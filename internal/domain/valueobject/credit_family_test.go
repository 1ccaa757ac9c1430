package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFamilyFromCreditType(t *testing.T) {
	tests := []struct {
		creditType string
		want       CreditFamily
	}{
		{creditType: "CONSUMO", want: FamilyConsumerMicro},
		{creditType: "MICROCREDITO", want: FamilyConsumerMicro},
		{creditType: "", want: FamilyConsumerMicro},
		{creditType: "VIVIENDA", want: FamilyHousing},
		{creditType: "vivienda", want: FamilyHousing},
		{creditType: "Inmobiliario", want: FamilyHousing},
		{creditType: "VIVIENDA DE INTERES PUBLICO", want: FamilyHousing},
		{creditType: "interes social", want: FamilyHousing},
		{creditType: "PRODUCTIVO PUBLICO", want: FamilyHousing},
	}

	for _, tt := range tests {
		t.Run(tt.creditType, func(t *testing.T) {
			assert.Equal(t, tt.want, FamilyFromCreditType(tt.creditType))
		})
	}
}

func TestValueObjectsFromString(t *testing.T) {
	d, err := DispositionFromString("REJECT")
	assert.NoError(t, err)
	assert.Equal(t, DispositionReject, d)
	_, err = DispositionFromString("DECLINE")
	assert.Error(t, err)

	a, err := EditActionFromString("SCORE")
	assert.NoError(t, err)
	assert.Equal(t, ActionScore, a)
	_, err = EditActionFromString("DELETE")
	assert.Error(t, err)

	l, err := RiskLevelFromString("Doubtful")
	assert.NoError(t, err)
	assert.Equal(t, LevelDoubtful, l)
	_, err = RiskLevelFromString("Bad")
	assert.Error(t, err)
}
