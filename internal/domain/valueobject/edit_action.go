package valueobject

import "fmt"

// EditAction tags what produced a field-edit record.
type EditAction struct {
	value string
}

var (
	ActionEdit      = EditAction{value: "EDIT"}
	ActionScore     = EditAction{value: "SCORE"}
	ActionReconcile = EditAction{value: "RECONCILE"}
)

// EditActionFromString reconstructs an EditAction from its string representation.
func EditActionFromString(s string) (EditAction, error) {
	switch s {
	case "EDIT":
		return ActionEdit, nil
	case "SCORE":
		return ActionScore, nil
	case "RECONCILE":
		return ActionReconcile, nil
	default:
		return EditAction{}, fmt.Errorf("invalid edit action: %s", s)
	}
}

func (a EditAction) String() string { return a.value }

// IsZero returns true if the action has not been set.
func (a EditAction) IsZero() bool { return a.value == "" }
