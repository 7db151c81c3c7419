package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// TypeLabelApply is the task type for applying a category label to a
	// Gmail message.
	TypeLabelApply = "label:apply"
)

// LabelApplyPayload carries everything the worker needs to label one message.
type LabelApplyPayload struct {
	MessageID string `json:"message_id"`
	LabelID   string `json:"label_id"`
	Label     string `json:"label"` // display name, for logs only
}

func NewLabelApplyTask(messageID, labelID, label string) (*asynq.Task, error) {
	payload, err := json.Marshal(LabelApplyPayload{
		MessageID: messageID,
		LabelID:   labelID,
		Label:     label,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeLabelApply, payload), nil
}
