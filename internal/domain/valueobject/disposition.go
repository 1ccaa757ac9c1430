package valueobject

import "fmt"

// Disposition is the advisory credit decision derived from category and
// final probability.
type Disposition struct {
	value string
}

var (
	DispositionApprovable = Disposition{value: "APPROVABLE"}
	DispositionReview     = Disposition{value: "REVIEW"}
	DispositionReject     = Disposition{value: "REJECT"}
)

// DispositionFromString reconstructs a Disposition from its string representation.
func DispositionFromString(s string) (Disposition, error) {
	switch s {
	case "APPROVABLE":
		return DispositionApprovable, nil
	case "REVIEW":
		return DispositionReview, nil
	case "REJECT":
		return DispositionReject, nil
	default:
		return Disposition{}, fmt.Errorf("invalid disposition: %s", s)
	}
}

func (d Disposition) String() string { return d.value }

// IsZero returns true if the disposition has not been set.
func (d Disposition) IsZero() bool { return d.value == "" }

// Equal checks equality with another Disposition.
func (d Disposition) Equal(other Disposition) bool { return d.value == other.value }
