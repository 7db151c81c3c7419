// Package worker holds the asynq task handlers run by the worker command.
package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"

	"mailsort/internal/tasks"
)

// LabelApplier is the slice of the Gmail client the label handler needs.
type LabelApplier interface {
	ApplyLabel(ctx context.Context, messageID, labelID string) error
}

// LabelDeps bundles the dependencies for the labeling handlers.
type LabelDeps struct {
	Applier LabelApplier
}

// RegisterHandlers wires all task handlers into the mux.
func RegisterHandlers(mux *asynq.ServeMux, deps LabelDeps) {
	log.Debugf("Registering %s handler", tasks.TypeLabelApply)
	mux.HandleFunc(tasks.TypeLabelApply, HandleLabelApplyTask(deps))
}

// HandleLabelApplyTask applies one category label to one message. Failures
// are returned so asynq retries with backoff.
func HandleLabelApplyTask(deps LabelDeps) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		var p tasks.LabelApplyPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			// A payload that never unmarshals will never succeed; skip retries.
			return fmt.Errorf("unmarshal %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
		}
		if p.MessageID == "" || p.LabelID == "" {
			return fmt.Errorf("%s payload missing message or label id: %w", t.Type(), asynq.SkipRetry)
		}

		if err := deps.Applier.ApplyLabel(ctx, p.MessageID, p.LabelID); err != nil {
			return fmt.Errorf("apply label %q to message %s: %w", p.Label, p.MessageID, err)
		}
		log.Infof("Applied label %q to message %s", p.Label, p.MessageID)
		return nil
	}
}
