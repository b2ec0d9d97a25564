package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailoverUsesPrimaryFirst(t *testing.T) {
	primary := &recordingSender{}
	secondary := &recordingSender{}
	f := NewFailoverSender(quietLogger(), primary, secondary)

	require.NoError(t, f.Send(context.Background(), EmailMessage{To: "a@example.com"}))
	assert.Len(t, primary.sent, 1)
	assert.Empty(t, secondary.sent)
}

func TestFailoverFallsBack(t *testing.T) {
	primary := &recordingSender{err: errors.New("ses throttled")}
	secondary := &recordingSender{}
	f := NewFailoverSender(quietLogger(), primary, secondary)

	require.NoError(t, f.Send(context.Background(), EmailMessage{To: "a@example.com"}))
	assert.Len(t, secondary.sent, 1)
}

func TestFailoverAllFail(t *testing.T) {
	primary := &recordingSender{err: errors.New("ses down")}
	secondary := &recordingSender{err: errors.New("sendgrid down")}
	f := NewFailoverSender(quietLogger(), primary, secondary)

	err := f.Send(context.Background(), EmailMessage{To: "a@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ses down")
	assert.Contains(t, err.Error(), "sendgrid down")
}

func TestFailoverSkipsNilSenders(t *testing.T) {
	secondary := &recordingSender{}
	f := NewFailoverSender(quietLogger(), nil, secondary)
	require.NoError(t, f.Send(context.Background(), EmailMessage{To: "a@example.com"}))
	assert.Len(t, secondary.sent, 1)
}
