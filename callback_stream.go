package exr

// CallbackIStream is an IStream over caller-supplied callbacks. It keeps
// its own cursor so Tell never calls back. A CallbackIStream must not be
// shared between files used concurrently.
type CallbackIStream struct {
	cb  InputCallbacks
	pos uint64
}

// NewCallbackIStream seeks the caller's stream to offset 0 and returns an
// adapter positioned there. A failing seek fails construction.
func NewCallbackIStream(cb InputCallbacks) (_ *CallbackIStream, err error) {
	defer guard("open input stream", &err)
	if cb.Read == nil || cb.Seek == nil {
		return nil, &UnspecifiedError{Op: "open input stream", Msg: ErrNilCallback.Error(), Err: ErrNilCallback}
	}
	s := &CallbackIStream{cb: cb}
	if err := s.SeekTo(0); err != nil {
		return nil, err
	}
	return s, nil
}

// ReadFull asks the callback for exactly len(p) bytes.
func (s *CallbackIStream) ReadFull(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	status, code := s.cb.Read(s.cb.Context, p)
	if err := statusError("read", status, code); err != nil {
		return err
	}
	s.pos += uint64(len(p))
	return nil
}

// SeekTo moves to pos. On failure the cursor is unchanged.
func (s *CallbackIStream) SeekTo(pos uint64) error {
	status, code := s.cb.Seek(s.cb.Context, pos)
	if err := statusError("seek", status, code); err != nil {
		return err
	}
	s.pos = pos
	return nil
}

func (s *CallbackIStream) Tell() uint64 { return s.pos }

// CallbackOStream is the output counterpart of CallbackIStream.
type CallbackOStream struct {
	cb  OutputCallbacks
	pos uint64
}

// NewCallbackOStream seeks the caller's stream to offset 0 and returns an
// adapter positioned there.
func NewCallbackOStream(cb OutputCallbacks) (_ *CallbackOStream, err error) {
	defer guard("open output stream", &err)
	if cb.Write == nil || cb.Seek == nil {
		return nil, &UnspecifiedError{Op: "open output stream", Msg: ErrNilCallback.Error(), Err: ErrNilCallback}
	}
	s := &CallbackOStream{cb: cb}
	if err := s.SeekTo(0); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *CallbackOStream) Write(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	status, code := s.cb.Write(s.cb.Context, p)
	if err := statusError("write", status, code); err != nil {
		return err
	}
	s.pos += uint64(len(p))
	return nil
}

func (s *CallbackOStream) SeekTo(pos uint64) error {
	status, code := s.cb.Seek(s.cb.Context, pos)
	if err := statusError("seek", status, code); err != nil {
		return err
	}
	s.pos = pos
	return nil
}

func (s *CallbackOStream) Tell() uint64 { return s.pos }
