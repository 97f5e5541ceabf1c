// Package bservetest provides test helpers for code built on bserve.
//
// [Channel] records every frame and signal an encoder emits so tests can assert on the exact
// sequence that would have reached the wire.
package bservetest

import (
	"bytes"
	"slices"
	"sync"

	"github.com/advdv/bserve"
)

// Event is one call observed by a [Channel].
type Event string

const (
	EventHead   Event = "head"
	EventBody   Event = "body"
	EventEnd    Event = "end"
	EventFlush  Event = "flush"
	EventSignal Event = "signal"
)

// Channel is an in-memory [bserve.Channel]. Set one of the Fail fields to make the matching
// call return that error.
type Channel struct {
	FailWriteHead error
	FailWriteBody error
	FailWriteEnd  error
	FailFlush     error

	mu     sync.Mutex
	events []Event
	head   *bserve.Head
	bodies [][]byte
}

// NewChannel inits an empty recording channel.
func NewChannel() *Channel { return &Channel{} }

func (c *Channel) WriteHead(h bserve.Head) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.FailWriteHead != nil {
		return c.FailWriteHead
	}

	h.Header = h.Header.Clone()
	c.head = &h
	c.events = append(c.events, EventHead)

	return nil
}

func (c *Channel) WriteBody(p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.FailWriteBody != nil {
		return c.FailWriteBody
	}

	c.bodies = append(c.bodies, bytes.Clone(p))
	c.events = append(c.events, EventBody)

	return nil
}

func (c *Channel) WriteEnd() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.FailWriteEnd != nil {
		return c.FailWriteEnd
	}

	c.events = append(c.events, EventEnd)

	return nil
}

func (c *Channel) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.FailFlush != nil {
		return c.FailFlush
	}

	c.events = append(c.events, EventFlush)

	return nil
}

func (c *Channel) ResponseComplete() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.events = append(c.events, EventSignal)
}

// Events returns every recorded call in order.
func (c *Channel) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.events)
}

// Count returns how often the event was recorded.
func (c *Channel) Count(ev Event) (n int) {
	for _, e := range c.Events() {
		if e == ev {
			n++
		}
	}

	return n
}

// Signals returns how often the completion signal fired.
func (c *Channel) Signals() int { return c.Count(EventSignal) }

// Head returns the head frame, if one was written.
func (c *Channel) Head() (bserve.Head, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.head == nil {
		return bserve.Head{}, false
	}

	return *c.head, true
}

// Bodies returns the body frames in order.
func (c *Channel) Bodies() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.bodies)
}

// Body returns all body frames joined.
func (c *Channel) Body() []byte {
	return bytes.Join(c.Bodies(), nil)
}

var _ bserve.Channel = &Channel{}
