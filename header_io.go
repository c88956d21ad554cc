package exr

import (
	"fmt"
	"slices"
	"strings"
)

const (
	magicNumber   = 20000630
	fileVersion   = 2
	flagTiled     = 0x200
	flagLongNames = 0x400
	flagNonImage  = 0x800
	flagMultiPart = 0x1000

	shortNameLen = 31
	longNameLen  = 255

	// maxAttributeSize bounds a single attribute value read from a file.
	maxAttributeSize = 1 << 26
)

// readHeader parses the magic number, version field and header attributes,
// leaving s positioned at the line offset table.
func readHeader(s IStream) (*Header, error) {
	var pre [8]byte
	if err := s.ReadFull(pre[:]); err != nil {
		return nil, fmt.Errorf("read magic number: %w", err)
	}
	r := newXDRReader(pre[:])
	if r.Uint32() != magicNumber {
		return nil, ErrNotOpenEXR
	}
	version := r.Uint32()
	if version&0xff != fileVersion {
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedVersion, version&0xff)
	}
	if version&(flagTiled|flagNonImage|flagMultiPart) != 0 {
		return nil, fmt.Errorf("%w: flags 0x%x (only single-part scanline files are supported)", ErrUnsupportedVersion, version&^0xff)
	}
	maxName := shortNameLen
	if version&flagLongNames != 0 {
		maxName = longNameLen
	}

	h := &Header{}
	seen := make(map[string]bool)
	for {
		name, err := readCString(s, maxName)
		if err != nil {
			return nil, fmt.Errorf("read attribute name: %w", err)
		}
		if name == "" {
			break
		}
		typeName, err := readCString(s, maxName)
		if err != nil {
			return nil, fmt.Errorf("read type of attribute %q: %w", name, err)
		}
		var sz [4]byte
		if err := s.ReadFull(sz[:]); err != nil {
			return nil, fmt.Errorf("read size of attribute %q: %w", name, err)
		}
		size := newXDRReader(sz[:]).Int32()
		if size < 0 || size > maxAttributeSize {
			return nil, fmt.Errorf("%w: attribute %q has size %d", ErrInvalidHeader, name, size)
		}
		value := make([]byte, size)
		if err := s.ReadFull(value); err != nil {
			return nil, fmt.Errorf("read value of attribute %q: %w", name, err)
		}
		if err := h.setAttribute(name, typeName, value); err != nil {
			return nil, err
		}
		seen[name] = true
	}
	for _, name := range requiredAttributes {
		if !seen[name] {
			return nil, fmt.Errorf("%w: missing required attribute %q", ErrInvalidHeader, name)
		}
	}
	return h, nil
}

func readCString(s IStream, limit int) (string, error) {
	var buf []byte
	var c [1]byte
	for {
		if err := s.ReadFull(c[:]); err != nil {
			return "", err
		}
		if c[0] == 0 {
			return string(buf), nil
		}
		if len(buf) == limit {
			return "", fmt.Errorf("%w: name longer than %d bytes", ErrInvalidHeader, limit)
		}
		buf = append(buf, c[0])
	}
}

// typeOf maps the interpreted attributes to their type names.
var typeOf = map[string]string{
	attrChannels:           "chlist",
	attrCompression:        "compression",
	attrDataWindow:         "box2i",
	attrDisplayWindow:      "box2i",
	attrLineOrder:          "lineOrder",
	attrPixelAspectRatio:   "float",
	attrScreenWindowCenter: "v2f",
	attrScreenWindowWidth:  "float",
	attrEnvmap:             "envmap",
	attrMultiView:          "stringvector",
}

func (h *Header) setAttribute(name, typeName string, value []byte) error {
	want, known := typeOf[name]
	if !known {
		h.extra = append(h.extra, rawAttribute{name: name, typeName: typeName, value: value})
		return nil
	}
	if typeName != want {
		return fmt.Errorf("%w: attribute %q has type %q, want %q", ErrInvalidHeader, name, typeName, want)
	}
	r := newXDRReader(value)
	switch name {
	case attrChannels:
		h.channels = ChannelList{}
		for {
			ch := r.CString(longNameLen)
			if r.err != nil || ch == "" {
				break
			}
			c := Channel{Type: PixelType(r.Int32())}
			c.PLinear = r.Uint8() != 0
			r.Bytes(3)
			c.XSampling = r.Int32()
			c.YSampling = r.Int32()
			h.channels.Insert(ch, c)
		}
	case attrCompression:
		h.compression = Compression(r.Uint8())
	case attrDataWindow:
		h.dataWindow = r.Box2i()
	case attrDisplayWindow:
		h.displayWindow = r.Box2i()
	case attrLineOrder:
		h.lineOrder = LineOrder(r.Uint8())
	case attrPixelAspectRatio:
		h.pixelAspectRatio = r.Float32()
	case attrScreenWindowCenter:
		h.screenWindowCenter = r.V2f()
	case attrScreenWindowWidth:
		h.screenWindowWidth = r.Float32()
	case attrEnvmap:
		h.SetEnvmap(Envmap(r.Uint8()))
	case attrMultiView:
		views := []string{}
		for r.err == nil && r.Remaining() > 0 {
			n := r.Int32()
			views = append(views, string(r.Bytes(int(n))))
		}
		h.multiView = views
	}
	if r.err != nil {
		return fmt.Errorf("%w: attribute %q: %v", ErrInvalidHeader, name, r.err)
	}
	return nil
}

// encodeHeader serializes the magic number, version field and attributes.
func encodeHeader(h *Header) []byte {
	type attr struct {
		name, typeName string
		value          []byte
	}
	var attrs []attr
	add := func(name string, fill func(w *xdrWriter)) {
		var w xdrWriter
		fill(&w)
		attrs = append(attrs, attr{name, typeOf[name], w.Bytes()})
	}

	add(attrChannels, func(w *xdrWriter) {
		for _, name := range h.channels.sortedNames() {
			ch, _ := h.channels.Find(name)
			w.CString(name)
			w.Int32(int32(ch.Type))
			if ch.PLinear {
				w.Uint8(1)
			} else {
				w.Uint8(0)
			}
			w.Write([]byte{0, 0, 0})
			w.Int32(ch.XSampling)
			w.Int32(ch.YSampling)
		}
		w.Uint8(0)
	})
	add(attrCompression, func(w *xdrWriter) { w.Uint8(uint8(h.compression)) })
	add(attrDataWindow, func(w *xdrWriter) { w.Box2i(h.dataWindow) })
	add(attrDisplayWindow, func(w *xdrWriter) { w.Box2i(h.displayWindow) })
	add(attrLineOrder, func(w *xdrWriter) { w.Uint8(uint8(h.lineOrder)) })
	add(attrPixelAspectRatio, func(w *xdrWriter) { w.Float32(h.pixelAspectRatio) })
	add(attrScreenWindowCenter, func(w *xdrWriter) { w.V2f(h.screenWindowCenter) })
	add(attrScreenWindowWidth, func(w *xdrWriter) { w.Float32(h.screenWindowWidth) })
	if h.hasEnvmap {
		add(attrEnvmap, func(w *xdrWriter) { w.Uint8(uint8(h.envmap)) })
	}
	if h.multiView != nil {
		add(attrMultiView, func(w *xdrWriter) {
			for _, v := range h.multiView {
				w.Int32(int32(len(v)))
				w.Write([]byte(v))
			}
		})
	}
	for _, a := range h.extra {
		attrs = append(attrs, attr{a.name, a.typeName, a.value})
	}
	slices.SortFunc(attrs, func(a, b attr) int { return strings.Compare(a.name, b.name) })

	version := uint32(fileVersion)
	for _, a := range attrs {
		if len(a.name) > shortNameLen || len(a.typeName) > shortNameLen {
			version |= flagLongNames
		}
	}
	for _, name := range h.channels.names {
		if len(name) > shortNameLen {
			version |= flagLongNames
		}
	}

	var w xdrWriter
	w.Uint32(magicNumber)
	w.Uint32(version)
	for _, a := range attrs {
		w.CString(a.name)
		w.CString(a.typeName)
		w.Int32(int32(len(a.value)))
		w.Write(a.value)
	}
	w.Uint8(0)
	return w.Bytes()
}
