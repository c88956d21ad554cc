package exr

import (
	"iter"
	"slices"
)

// Channel describes one named channel of an image.
type Channel struct {
	Type      PixelType
	XSampling int32
	YSampling int32
	// PLinear marks perceptually linear data. It steers lossy
	// quantization only.
	PLinear bool
}

// NewChannel returns an unsubsampled channel of type t.
func NewChannel(t PixelType) Channel {
	return Channel{Type: t, XSampling: 1, YSampling: 1}
}

// ChannelList maps channel names to channels and iterates in insertion
// order. Files always store channels sorted by name, so a list read from a
// file iterates alphabetically.
type ChannelList struct {
	names    []string
	channels map[string]Channel
}

// Insert adds ch under name, replacing an existing channel of that name in
// place.
func (l *ChannelList) Insert(name string, ch Channel) {
	if l.channels == nil {
		l.channels = make(map[string]Channel)
	}
	if _, ok := l.channels[name]; !ok {
		l.names = append(l.names, name)
	}
	l.channels[name] = ch
}

// Find returns the channel called name.
func (l *ChannelList) Find(name string) (Channel, bool) {
	ch, ok := l.channels[name]
	return ch, ok
}

func (l *ChannelList) Len() int { return len(l.names) }

// Names returns the channel names in iteration order.
func (l *ChannelList) Names() []string { return slices.Clone(l.names) }

// All yields every (name, channel) pair in iteration order.
func (l *ChannelList) All() iter.Seq2[string, Channel] {
	return func(yield func(string, Channel) bool) {
		for _, n := range l.names {
			if !yield(n, l.channels[n]) {
				return
			}
		}
	}
}

// sortedNames returns the names in on-disk order.
func (l *ChannelList) sortedNames() []string {
	names := slices.Clone(l.names)
	slices.Sort(names)
	return names
}

func (l *ChannelList) clone() ChannelList {
	c := ChannelList{names: slices.Clone(l.names), channels: make(map[string]Channel, len(l.channels))}
	for k, v := range l.channels {
		c.channels[k] = v
	}
	return c
}

// Iterator returns a restartable cursor over the list. The iterator is
// bound to the list; it must not be used after the owning header is
// discarded, and it should be released when done.
func (l *ChannelList) Iterator() *ChannelIterator {
	return &ChannelIterator{list: l, end: len(l.names)}
}

// ChannelIterator walks a ChannelList between a begin and an end cursor
// fixed at creation.
type ChannelIterator struct {
	list     *ChannelList
	cur, end int
}

// Next returns the next pair, or ok == false at the end or after Release.
func (it *ChannelIterator) Next() (name string, ch Channel, ok bool) {
	if it.list == nil || it.cur >= it.end || it.cur >= len(it.list.names) {
		return "", Channel{}, false
	}
	name = it.list.names[it.cur]
	it.cur++
	return name, it.list.channels[name], true
}

// Reset rewinds the iterator to the beginning.
func (it *ChannelIterator) Reset() { it.cur = 0 }

// Release detaches the iterator from its list.
func (it *ChannelIterator) Release() {
	it.list = nil
}
