package exr

// MemoryIStream reads from a caller-owned byte slice. The slice must stay
// alive and unmodified while the stream is in use.
type MemoryIStream struct {
	name string
	data []byte
	pos  uint64
}

// NewMemoryIStream returns a stream over data. name is used in error
// messages only.
func NewMemoryIStream(name string, data []byte) *MemoryIStream {
	return &MemoryIStream{name: name, data: data}
}

func (m *MemoryIStream) Name() string { return m.name }

func (m *MemoryIStream) window(n int) (uint64, error) {
	end := m.pos + uint64(n)
	if n < 0 || end < m.pos || end > uint64(len(m.data)) {
		return 0, &UnspecifiedError{Op: "read " + m.name, Msg: ErrEndOfData.Error(), Err: ErrEndOfData}
	}
	return end, nil
}

// ReadFull copies len(p) bytes or, when fewer remain, fails without
// touching p.
func (m *MemoryIStream) ReadFull(p []byte) error {
	end, err := m.window(len(p))
	if err != nil {
		return err
	}
	copy(p, m.data[m.pos:end])
	m.pos = end
	return nil
}

func (m *MemoryIStream) IsMemoryMapped() bool { return true }

// ReadMemoryMapped returns the next n bytes of the backing slice without
// copying. The result aliases the caller's memory.
func (m *MemoryIStream) ReadMemoryMapped(n int) ([]byte, error) {
	end, err := m.window(n)
	if err != nil {
		return nil, err
	}
	b := m.data[m.pos:end:end]
	m.pos = end
	return b, nil
}

// SeekTo always succeeds; a position past the end makes the next read
// fail.
func (m *MemoryIStream) SeekTo(pos uint64) error {
	m.pos = pos
	return nil
}

func (m *MemoryIStream) Tell() uint64 { return m.pos }
