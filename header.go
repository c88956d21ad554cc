package exr

import (
	"fmt"
	"math"
	"slices"
)

// Attribute names with a fixed meaning in every file.
const (
	attrChannels           = "channels"
	attrCompression        = "compression"
	attrDataWindow         = "dataWindow"
	attrDisplayWindow      = "displayWindow"
	attrLineOrder          = "lineOrder"
	attrPixelAspectRatio   = "pixelAspectRatio"
	attrScreenWindowCenter = "screenWindowCenter"
	attrScreenWindowWidth  = "screenWindowWidth"
	attrEnvmap             = "envmap"
	attrMultiView          = "multiView"
)

var requiredAttributes = []string{
	attrChannels, attrCompression, attrDataWindow, attrDisplayWindow,
	attrLineOrder, attrPixelAspectRatio, attrScreenWindowCenter, attrScreenWindowWidth,
}

// rawAttribute is an attribute this package does not interpret. It is
// kept verbatim so that it survives a read/write round trip.
type rawAttribute struct {
	name     string
	typeName string
	value    []byte
}

// Header describes one image: its geometry, compression, channels and a
// few well-known optional attributes.
type Header struct {
	displayWindow      Box2i
	dataWindow         Box2i
	pixelAspectRatio   float32
	screenWindowCenter V2f
	screenWindowWidth  float32
	lineOrder          LineOrder
	compression        Compression
	channels           ChannelList

	envmap    Envmap
	hasEnvmap bool
	multiView []string // nil when absent
	extra     []rawAttribute
}

// NewHeader returns a header with every required field set. The header is
// not validated until it is used to create an OutputFile.
func NewHeader(displayWindow, dataWindow Box2i, pixelAspectRatio float32,
	screenWindowCenter V2f, screenWindowWidth float32,
	lineOrder LineOrder, compression Compression) *Header {
	return &Header{
		displayWindow:      displayWindow,
		dataWindow:         dataWindow,
		pixelAspectRatio:   pixelAspectRatio,
		screenWindowCenter: screenWindowCenter,
		screenWindowWidth:  screenWindowWidth,
		lineOrder:          lineOrder,
		compression:        compression,
	}
}

// NewHeaderSize returns a header for a width x height image at the origin
// with square pixels, increasing line order and ZIP compression.
func NewHeaderSize(width, height int32) *Header {
	w := NewBox2i(0, 0, width, height)
	return NewHeader(w, w, 1, V2f{}, 1, LineOrderIncreasingY, CompressionZIP)
}

func (h *Header) DisplayWindow() Box2i { return h.displayWindow }
func (h *Header) SetDisplayWindow(b Box2i) { h.displayWindow = b }
func (h *Header) DataWindow() Box2i { return h.dataWindow }
func (h *Header) SetDataWindow(b Box2i) { h.dataWindow = b }
func (h *Header) PixelAspectRatio() float32 { return h.pixelAspectRatio }
func (h *Header) SetPixelAspectRatio(r float32) { h.pixelAspectRatio = r }
func (h *Header) ScreenWindowCenter() V2f { return h.screenWindowCenter }
func (h *Header) SetScreenWindowCenter(c V2f) { h.screenWindowCenter = c }
func (h *Header) ScreenWindowWidth() float32 { return h.screenWindowWidth }
func (h *Header) SetScreenWindowWidth(w float32) { h.screenWindowWidth = w }
func (h *Header) LineOrder() LineOrder { return h.lineOrder }
func (h *Header) SetLineOrder(o LineOrder) { h.lineOrder = o }
func (h *Header) Compression() Compression { return h.compression }
func (h *Header) SetCompression(c Compression) { h.compression = c }

// SetResolution sets both windows to a width x height box at the origin.
func (h *Header) SetResolution(width, height int32) {
	b := NewBox2i(0, 0, width, height)
	h.displayWindow = b
	h.dataWindow = b
}

// DataOrigin returns the top-left corner of the data window.
func (h *Header) DataOrigin() V2i { return h.dataWindow.Min }

// DataDimensions returns the width and height of the data window.
func (h *Header) DataDimensions() (int, int) {
	return h.dataWindow.Width(), h.dataWindow.Height()
}

// Channels returns the header's channel list. It stays valid as long as
// the header does.
func (h *Header) Channels() *ChannelList { return &h.channels }

// InsertChannel adds or replaces a channel.
func (h *Header) InsertChannel(name string, ch Channel) { h.channels.Insert(name, ch) }

// FindChannel looks up a channel by name.
func (h *Header) FindChannel(name string) (Channel, bool) { return h.channels.Find(name) }

// Envmap returns the environment map kind, if the attribute is present.
func (h *Header) Envmap() (Envmap, bool) { return h.envmap, h.hasEnvmap }

func (h *Header) SetEnvmap(e Envmap) {
	h.envmap = e
	h.hasEnvmap = true
}

// MultiView returns the view names, or nil if the attribute is absent.
func (h *Header) MultiView() []string { return slices.Clone(h.multiView) }

// SetMultiView sets the view names. A nil slice is stored as an empty,
// present list; use EraseAttribute to remove it.
func (h *Header) SetMultiView(views []string) {
	h.multiView = append([]string{}, views...)
}

// HasAttribute reports whether an attribute called name is present.
func (h *Header) HasAttribute(name string) bool {
	switch name {
	case attrEnvmap:
		return h.hasEnvmap
	case attrMultiView:
		return h.multiView != nil
	}
	if slices.Contains(requiredAttributes, name) {
		return true
	}
	return h.extraIndex(name) >= 0
}

// AttributeNames lists every attribute the header would write, sorted.
func (h *Header) AttributeNames() []string {
	names := slices.Clone(requiredAttributes)
	if h.hasEnvmap {
		names = append(names, attrEnvmap)
	}
	if h.multiView != nil {
		names = append(names, attrMultiView)
	}
	for _, a := range h.extra {
		names = append(names, a.name)
	}
	slices.Sort(names)
	return names
}

// EraseAttribute removes the optional attribute called name. It is a
// no-op if the attribute is absent; required attributes cannot be erased.
func (h *Header) EraseAttribute(name string) {
	switch name {
	case attrEnvmap:
		h.hasEnvmap = false
		h.envmap = 0
		return
	case attrMultiView:
		h.multiView = nil
		return
	}
	if i := h.extraIndex(name); i >= 0 {
		h.extra = slices.Delete(h.extra, i, i+1)
	}
}

func (h *Header) extraIndex(name string) int {
	return slices.IndexFunc(h.extra, func(a rawAttribute) bool { return a.name == name })
}

// Clone returns a deep copy of h.
func (h *Header) Clone() *Header {
	c := *h
	c.channels = h.channels.clone()
	if h.multiView != nil {
		c.multiView = slices.Clone(h.multiView)
	}
	c.extra = make([]rawAttribute, len(h.extra))
	for i, a := range h.extra {
		c.extra[i] = rawAttribute{a.name, a.typeName, slices.Clone(a.value)}
	}
	return &c
}

// sanityCheck rejects headers that cannot describe a scanline file.
func (h *Header) sanityCheck() error {
	if h.displayWindow.IsEmpty() {
		return fmt.Errorf("%w: display window %v is empty", ErrInvalidHeader, h.displayWindow)
	}
	dw := h.dataWindow
	if dw.IsEmpty() {
		return fmt.Errorf("%w: data window %v is empty", ErrInvalidHeader, dw)
	}
	if int64(dw.Width())*int64(dw.Height()) > math.MaxInt32 {
		return fmt.Errorf("%w: data window %v is too large", ErrInvalidHeader, dw)
	}
	r := h.pixelAspectRatio
	if !(r >= 1e-6 && r <= 1e6) {
		return fmt.Errorf("%w: pixel aspect ratio %g out of range", ErrInvalidHeader, r)
	}
	if h.screenWindowWidth < 0 || math.IsNaN(float64(h.screenWindowWidth)) {
		return fmt.Errorf("%w: negative screen window width", ErrInvalidHeader)
	}
	if h.lineOrder < LineOrderIncreasingY || h.lineOrder > LineOrderRandomY {
		return fmt.Errorf("%w: line order %d", ErrInvalidHeader, int32(h.lineOrder))
	}
	if h.compression < CompressionNone || h.compression > CompressionDWAB {
		return fmt.Errorf("%w: compression %d", ErrInvalidHeader, int32(h.compression))
	}
	if h.channels.Len() == 0 {
		return fmt.Errorf("%w: no channels", ErrInvalidHeader)
	}
	for name, ch := range h.channels.All() {
		if name == "" {
			return fmt.Errorf("%w: empty channel name", ErrInvalidHeader)
		}
		if !ch.Type.valid() {
			return fmt.Errorf("%w: channel %q has pixel type %d", ErrInvalidHeader, name, int32(ch.Type))
		}
		if ch.XSampling < 1 || ch.YSampling < 1 {
			return fmt.Errorf("%w: channel %q has sampling %dx%d", ErrInvalidHeader, name, ch.XSampling, ch.YSampling)
		}
		if mod(dw.Min.X, ch.XSampling) != 0 || mod(dw.Min.Y, ch.YSampling) != 0 {
			return fmt.Errorf("%w: data window origin of channel %q is not a multiple of its sampling", ErrInvalidHeader, name)
		}
		if dw.Width()%int(ch.XSampling) != 0 || dw.Height()%int(ch.YSampling) != 0 {
			return fmt.Errorf("%w: data window size of channel %q is not a multiple of its sampling", ErrInvalidHeader, name)
		}
	}
	return nil
}

// validateForOutput requires every channel to be backed by a compatible
// slice in fb.
func (h *Header) validateForOutput(fb *FrameBuffer) error {
	if err := fb.validate(); err != nil {
		return err
	}
	for name, ch := range h.channels.All() {
		s, ok := fb.Slice(name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrMissingChannel, name)
		}
		if err := checkSlice(name, ch, s); err != nil {
			return err
		}
	}
	return nil
}

// validateForInput checks slices that name a channel of the file. Slices
// without a channel are allowed and get filled.
func (h *Header) validateForInput(fb *FrameBuffer) error {
	if err := fb.validate(); err != nil {
		return err
	}
	for _, name := range fb.Names() {
		ch, ok := h.channels.Find(name)
		if !ok {
			continue
		}
		s, _ := fb.Slice(name)
		if err := checkSlice(name, ch, s); err != nil {
			return err
		}
	}
	return nil
}

func checkSlice(name string, ch Channel, s Slice) error {
	if s.Type != ch.Type {
		return fmt.Errorf("%w: %q is %v in the frame buffer and %v in the header", ErrPixelTypeMismatch, name, s.Type, ch.Type)
	}
	if s.XSampling != int(ch.XSampling) || s.YSampling != int(ch.YSampling) {
		return fmt.Errorf("%w: %q is %dx%d in the frame buffer and %dx%d in the header",
			ErrSamplingMismatch, name, s.XSampling, s.YSampling, ch.XSampling, ch.YSampling)
	}
	return nil
}

// mod is the non-negative remainder of a / b.
func mod(a, b int32) int32 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
