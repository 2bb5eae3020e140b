// Package notify surfaces short user-facing messages ("toasts").
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"
)

type Level string

const (
	Success Level = "success"
	Error   Level = "error"
	Warning Level = "warning"
	Info    Level = "info"
)

// Notifier shows a transient message to the user.
type Notifier interface {
	Notify(ctx context.Context, level Level, msg string)
}

// Func adapts a plain function to Notifier.
type Func func(ctx context.Context, level Level, msg string)

func (f Func) Notify(ctx context.Context, level Level, msg string) { f(ctx, level, msg) }

var marks = map[Level]string{
	Success: "[ok]",
	Error:   "[!!]",
	Warning: "[! ]",
	Info:    "[i ]",
}

// Console prints notifications as single lines to a writer.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Notify(_ context.Context, level Level, msg string) {
	mark, ok := marks[level]
	if !ok {
		mark = marks[Info]
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "%s %s\n", mark, msg)
}

// Recorder keeps notifications in memory.
type Recorder struct {
	mu       sync.Mutex
	Messages []Message
}

type Message struct {
	Level Level
	Text  string
}

func (r *Recorder) Notify(_ context.Context, level Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, Message{Level: level, Text: msg})
}

// Snapshot returns a copy of the recorded messages.
func (r *Recorder) Snapshot() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.Messages...)
}

// Last returns the most recent message, or the zero Message.
func (r *Recorder) Last() Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Messages) == 0 {
		return Message{}
	}
	return r.Messages[len(r.Messages)-1]
}
