package featuremodel

import (
	"github.com/zjrosen/featmodel/internal/identifier"
	"github.com/zjrosen/featmodel/internal/pubsub"
)

// ChangeKind names the kind of mutation a Change reports.
type ChangeKind string

const (
	ChangeModelRenamed      ChangeKind = "model_renamed"
	ChangeFeatureAdded      ChangeKind = "feature_added"
	ChangeFeatureRemoved    ChangeKind = "feature_removed"
	ChangeFeatureUpdated    ChangeKind = "feature_updated"
	ChangeTreeUpdated       ChangeKind = "tree_updated"
	ChangeConstraintAdded   ChangeKind = "constraint_added"
	ChangeConstraintUpdated ChangeKind = "constraint_updated"
	ChangeConstraintRemoved ChangeKind = "constraint_removed"
)

// Change is published after every successful mutation.
type Change struct {
	Kind ChangeKind
	// Subject identifies the feature, constraint or model that changed.
	Subject identifier.Identifier
}

func (k ChangeKind) eventType() pubsub.EventType {
	switch k {
	case ChangeFeatureAdded, ChangeConstraintAdded:
		return pubsub.CreatedEvent
	case ChangeFeatureRemoved, ChangeConstraintRemoved:
		return pubsub.DeletedEvent
	default:
		return pubsub.UpdatedEvent
	}
}

func (m *Model) publish(kind ChangeKind, subject identifier.Identifier) {
	m.broker.Publish(kind.eventType(), Change{Kind: kind, Subject: subject})
}
