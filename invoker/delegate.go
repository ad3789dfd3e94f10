package invoker

import "zyan/domain"

// Entry is one subscriber of a Delegate. Key identifies the entry for
// replacement and removal and must be comparable.
type Entry struct {
	Key any
	Fn  domain.Handler
}

// Delegate is an immutable invocation list. With and Without return a new
// delegate and never touch the receiver, so a snapshot taken by a trigger
// stays valid while writers move on.
type Delegate struct {
	entries []Entry
}

func NewDelegate(entries ...Entry) *Delegate {
	d := &Delegate{}
	for _, e := range entries {
		d = d.With(e)
	}
	return d
}

// With adds e, or replaces in place the entry sharing its key.
func (d *Delegate) With(e Entry) *Delegate {
	if d == nil {
		return &Delegate{entries: []Entry{e}}
	}
	next := make([]Entry, len(d.entries), len(d.entries)+1)
	copy(next, d.entries)
	for i := range next {
		if next[i].Key == e.Key {
			next[i] = e
			return &Delegate{entries: next}
		}
	}
	return &Delegate{entries: append(next, e)}
}

// Without removes the entry with key. It returns nil once the list is empty.
func (d *Delegate) Without(key any) *Delegate {
	if d == nil {
		return nil
	}
	next := make([]Entry, 0, len(d.entries))
	for _, e := range d.entries {
		if e.Key != key {
			next = append(next, e)
		}
	}
	if len(next) == 0 {
		return nil
	}
	return &Delegate{entries: next}
}

func (d *Delegate) Has(key any) bool {
	if d == nil {
		return false
	}
	for _, e := range d.entries {
		if e.Key == key {
			return true
		}
	}
	return false
}

func (d *Delegate) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Entries returns a copy of the invocation list in order.
func (d *Delegate) Entries() []Entry {
	if d == nil {
		return nil
	}
	return append([]Entry(nil), d.entries...)
}
