package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailsort/internal/tasks"
)

type fakeApplier struct {
	calls []string
	err   error
}

func (f *fakeApplier) ApplyLabel(ctx context.Context, messageID, labelID string) error {
	f.calls = append(f.calls, messageID+":"+labelID)
	return f.err
}

func TestHandleLabelApplyTask(t *testing.T) {
	applier := &fakeApplier{}
	handler := HandleLabelApplyTask(LabelDeps{Applier: applier})

	task, err := tasks.NewLabelApplyTask("m1", "CATEGORY_PROMOTIONS", "Promotions")
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	assert.Equal(t, []string{"m1:CATEGORY_PROMOTIONS"}, applier.calls)
}

func TestHandleLabelApplyTaskApplierErrorIsRetryable(t *testing.T) {
	applier := &fakeApplier{err: errors.New("gmail 500")}
	handler := HandleLabelApplyTask(LabelDeps{Applier: applier})

	task, err := tasks.NewLabelApplyTask("m1", "l1", "Updates")
	require.NoError(t, err)

	err = handler(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry, "transient failures must stay retryable")
}

func TestHandleLabelApplyTaskBadPayloadSkipsRetry(t *testing.T) {
	applier := &fakeApplier{}
	handler := HandleLabelApplyTask(LabelDeps{Applier: applier})

	err := handler(context.Background(), asynq.NewTask(tasks.TypeLabelApply, []byte("not json")))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, applier.calls)
}

func TestHandleLabelApplyTaskMissingIDsSkipRetry(t *testing.T) {
	applier := &fakeApplier{}
	handler := HandleLabelApplyTask(LabelDeps{Applier: applier})

	task, err := tasks.NewLabelApplyTask("", "l1", "Updates")
	require.NoError(t, err)

	err = handler(context.Background(), task)
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, applier.calls)
}
