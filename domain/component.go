package domain

import (
	"context"
	"fmt"
	"sync/atomic"
)

type ActivationPolicy int

const (
	// Singleton components share one instance for the lifetime of the host.
	Singleton ActivationPolicy = iota
	// SingleCall components get a fresh instance per call, released when the call ends.
	SingleCall
)

func (p ActivationPolicy) String() string {
	switch p {
	case Singleton:
		return "Singleton"
	case SingleCall:
		return "SingleCall"
	default:
		return fmt.Sprintf("ActivationPolicy(%d)", int(p))
	}
}

// Handler is the uniform callable shape for methods, event triggers and
// subscribers. Arguments arrive already bound to the declared signature.
type Handler func(ctx context.Context, args []any) (any, error)

// Component is implemented by every hosted service. Describe enumerates the
// methods and event slots the component exposes; the engine never inspects
// the component through reflection.
type Component interface {
	Describe() Descriptor
}

type Factory func() (Component, error)

type Method struct {
	Name    string
	Params  []ParamDef
	Returns ParamType
	// OneWay methods are scheduled on the thread pool and the caller gets an
	// immediate synthetic success.
	OneWay bool
	Fn     Handler
}

func (m Method) Signature() Signature {
	return SignatureOf(m.Params)
}

type Descriptor struct {
	Methods []Method
	Events  []*EventSlot
}

// Method resolves a method by name and parameter types. A nil params slice
// matches by name alone when the name is not overloaded.
func (d Descriptor) Method(name string, params []ParamDef) (Method, bool) {
	if params == nil {
		var found []Method
		for _, m := range d.Methods {
			if m.Name == name {
				found = append(found, m)
			}
		}
		if len(found) == 1 {
			return found[0], true
		}
		return Method{}, false
	}
	want := SignatureOf(params)
	for _, m := range d.Methods {
		if m.Name == name && m.Signature().Equal(want) {
			return m, true
		}
	}
	return Method{}, false
}

func (d Descriptor) Event(name string) (*EventSlot, bool) {
	for _, e := range d.Events {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// EventSlot is an event member of a component. At most one trigger is
// attached at a time; the engine attaches the wired multicast delegate there.
type EventSlot struct {
	Name      string
	Signature Signature
	trigger   atomic.Pointer[Handler]
}

func NewEventSlot(name string, params ...ParamDef) *EventSlot {
	return &EventSlot{Name: name, Signature: SignatureOf(params)}
}

// Attach installs h as the slot trigger and returns a detach function which
// only clears the slot if h is still the installed trigger.
func (s *EventSlot) Attach(h Handler) (detach func()) {
	p := &h
	s.trigger.Store(p)
	return func() {
		s.trigger.CompareAndSwap(p, nil)
	}
}

func (s *EventSlot) Attached() bool {
	return s.trigger.Load() != nil
}

// Raise runs the attached trigger. Without subscribers it is a no-op.
func (s *EventSlot) Raise(ctx context.Context, args ...any) (any, error) {
	p := s.trigger.Load()
	if p == nil {
		return nil, nil
	}
	return (*p)(ctx, args)
}
