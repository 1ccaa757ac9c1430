package valueobject

import "fmt"

// RiskLevel is the human label attached to a category.
type RiskLevel struct {
	value string
}

var (
	LevelNormal    = RiskLevel{value: "Normal"}
	LevelPotential = RiskLevel{value: "Potential"}
	LevelDeficient = RiskLevel{value: "Deficient"}
	LevelDoubtful  = RiskLevel{value: "Doubtful"}
	LevelLoss      = RiskLevel{value: "Loss"}
)

// RiskLevelFromString reconstructs a RiskLevel from its label.
func RiskLevelFromString(s string) (RiskLevel, error) {
	switch s {
	case "Normal":
		return LevelNormal, nil
	case "Potential":
		return LevelPotential, nil
	case "Deficient":
		return LevelDeficient, nil
	case "Doubtful":
		return LevelDoubtful, nil
	case "Loss":
		return LevelLoss, nil
	default:
		return RiskLevel{}, fmt.Errorf("invalid risk level: %s", s)
	}
}

func (l RiskLevel) String() string { return l.value }

// IsZero returns true if the level has not been set.
func (l RiskLevel) IsZero() bool { return l.value == "" }

// Equal checks equality with another RiskLevel.
func (l RiskLevel) Equal(other RiskLevel) bool { return l.value == other.value }
