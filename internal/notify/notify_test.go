package notify

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsole_Notify(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	ctx := context.Background()

	c.Notify(ctx, Success, "Emergency request sent")
	c.Notify(ctx, Error, "Location access is required")
	c.Notify(ctx, Level("odd"), "falls back to info")

	assert.Equal(t, "[ok] Emergency request sent\n[!!] Location access is required\n[i ] falls back to info\n", buf.String())
}

func TestRecorder(t *testing.T) {
	var r Recorder
	assert.Equal(t, Message{}, r.Last())

	var n Notifier = &r
	n.Notify(context.Background(), Info, "one")
	n.Notify(context.Background(), Warning, "two")

	assert.Equal(t, Message{Level: Warning, Text: "two"}, r.Last())
	assert.Len(t, r.Snapshot(), 2)
}

func TestFunc(t *testing.T) {
	var got string
	var n Notifier = Func(func(_ context.Context, l Level, msg string) { got = string(l) + ":" + msg })
	n.Notify(context.Background(), Error, "boom")
	assert.Equal(t, "error:boom", got)
}
