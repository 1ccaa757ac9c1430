package valueobject

import "strings"

// CreditFamily selects which delinquency table applies to a credit type.
type CreditFamily struct {
	value string
}

var (
	FamilyConsumerMicro = CreditFamily{value: "CONSUMER_MICRO"}
	FamilyHousing       = CreditFamily{value: "HOUSING"}
)

var housingKeywords = []string{"VIV", "INMOB", "INTERES", "SOCIAL", "PUBLIC"}

// FamilyFromCreditType matches housing keywords case-insensitively anywhere
// in creditType; everything else, including the empty string, is consumer or
// microcredit.
func FamilyFromCreditType(creditType string) CreditFamily {
	upper := strings.ToUpper(creditType)
	for _, kw := range housingKeywords {
		if strings.Contains(upper, kw) {
			return FamilyHousing
		}
	}
	return FamilyConsumerMicro
}

func (f CreditFamily) String() string { return f.value }

// IsHousing reports whether f is the housing family.
func (f CreditFamily) IsHousing() bool { return f.value == FamilyHousing.value }

// Equal checks equality with another CreditFamily.
func (f CreditFamily) Equal(other CreditFamily) bool { return f.value == other.value }
