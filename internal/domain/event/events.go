package event

import (
	"time"

	"github.com/bibbank/creditrisk/pkg/events"
)

const (
	// EventTypeCategoryChanged is emitted when a customer's regulatory category changes.
	EventTypeCategoryChanged = "risk.category.changed"

	// EventTypeHighRiskDetected is emitted when a customer enters C-1 or worse.
	EventTypeHighRiskDetected = "risk.high_risk.detected"

	// EventTypeProfileEdited is emitted when a field-edit record is written.
	EventTypeProfileEdited = "risk.profile.edited"

	// AggregateTypeCustomerProfile identifies the aggregate in the outbox.
	AggregateTypeCustomerProfile = "customer_profile"
)

// CategoryChanged is published alongside every category transition record.
// From is empty on the first classification.
type CategoryChanged struct {
	events.BaseEvent
	ChangedAt   time.Time `json:"changed_at"`
	CustomerKey string    `json:"customer_key"`
	From        string    `json:"from,omitempty"`
	To          string    `json:"to"`
	Level       string    `json:"level"`
	ChangedBy   string    `json:"changed_by"`
	IsHighRisk  bool      `json:"is_high_risk"`
}

// NewCategoryChanged builds a CategoryChanged event.
func NewCategoryChanged(customerKey, from, to, level string, isHighRisk bool, changedBy string, at time.Time) CategoryChanged {
	return CategoryChanged{
		BaseEvent:   events.NewBaseEvent(EventTypeCategoryChanged, customerKey, AggregateTypeCustomerProfile, at),
		CustomerKey: customerKey,
		From:        from,
		To:          to,
		Level:       level,
		IsHighRisk:  isHighRisk,
		ChangedBy:   changedBy,
		ChangedAt:   at,
	}
}

// HighRiskDetected is published when a customer crosses into a high-risk
// category from a non-high-risk one or from no category at all.
type HighRiskDetected struct {
	events.BaseEvent
	DetectedAt  time.Time `json:"detected_at"`
	CustomerKey string    `json:"customer_key"`
	Category    string    `json:"category"`
	Level       string    `json:"level"`
	DetectedBy  string    `json:"detected_by"`
}

// NewHighRiskDetected builds a HighRiskDetected event.
func NewHighRiskDetected(customerKey, category, level, detectedBy string, at time.Time) HighRiskDetected {
	return HighRiskDetected{
		BaseEvent:   events.NewBaseEvent(EventTypeHighRiskDetected, customerKey, AggregateTypeCustomerProfile, at),
		CustomerKey: customerKey,
		Category:    category,
		Level:       level,
		DetectedBy:  detectedBy,
		DetectedAt:  at,
	}
}

// ProfileEdited is published alongside every field-edit record.
type ProfileEdited struct {
	events.BaseEvent
	ChangedAt     time.Time `json:"changed_at"`
	CustomerKey   string    `json:"customer_key"`
	Action        string    `json:"action"`
	ChangedBy     string    `json:"changed_by"`
	ChangedFields []string  `json:"changed_fields"`
}

// NewProfileEdited builds a ProfileEdited event.
func NewProfileEdited(customerKey, action, changedBy string, changedFields []string, at time.Time) ProfileEdited {
	return ProfileEdited{
		BaseEvent:     events.NewBaseEvent(EventTypeProfileEdited, customerKey, AggregateTypeCustomerProfile, at),
		CustomerKey:   customerKey,
		Action:        action,
		ChangedBy:     changedBy,
		ChangedFields: changedFields,
		ChangedAt:     at,
	}
}
