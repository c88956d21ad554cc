package exr

import (
	"errors"
	"slices"
	"testing"
)

func testHeader() *Header {
	w := Box2i{Min: V2i{0, 0}, Max: V2i{15, 15}}
	h := NewHeader(w, w, 1, V2f{0, 0}, 1, LineOrderIncreasingY, CompressionNone)
	h.InsertChannel("R", NewChannel(PixelTypeFloat))
	return h
}

func TestNewHeaderFields(t *testing.T) {
	display := NewBox2i(0, 0, 1920, 1080)
	data := NewBox2i(10, 20, 100, 50)
	h := NewHeader(display, data, 1.5, V2f{0.25, -0.5}, 2, LineOrderDecreasingY, CompressionPXR24)
	if h.DisplayWindow() != display || h.DataWindow() != data {
		t.Errorf("windows = %v %v", h.DisplayWindow(), h.DataWindow())
	}
	if h.PixelAspectRatio() != 1.5 || h.ScreenWindowCenter() != (V2f{0.25, -0.5}) || h.ScreenWindowWidth() != 2 {
		t.Errorf("camera fields = %v %v %v", h.PixelAspectRatio(), h.ScreenWindowCenter(), h.ScreenWindowWidth())
	}
	if h.LineOrder() != LineOrderDecreasingY || h.Compression() != CompressionPXR24 {
		t.Errorf("line order %v compression %v", h.LineOrder(), h.Compression())
	}
	if o := h.DataOrigin(); o != (V2i{10, 20}) {
		t.Errorf("DataOrigin = %v", o)
	}
	if w, ht := h.DataDimensions(); w != 100 || ht != 50 {
		t.Errorf("DataDimensions = %d x %d", w, ht)
	}

	h.SetResolution(64, 32)
	want := Box2i{Max: V2i{63, 31}}
	if h.DisplayWindow() != want || h.DataWindow() != want {
		t.Errorf("after SetResolution: %v %v", h.DisplayWindow(), h.DataWindow())
	}
}

func TestChannelListInsertOverwrites(t *testing.T) {
	h := testHeader()
	h.InsertChannel("G", NewChannel(PixelTypeHalf))
	h.InsertChannel("B", NewChannel(PixelTypeUint))
	h.InsertChannel("R", Channel{Type: PixelTypeHalf, XSampling: 2, YSampling: 2})

	if got := h.Channels().Names(); !slices.Equal(got, []string{"R", "G", "B"}) {
		t.Errorf("Names = %v, want insertion order", got)
	}
	ch, ok := h.FindChannel("R")
	if !ok || ch.Type != PixelTypeHalf || ch.XSampling != 2 {
		t.Errorf("R = %+v, %v", ch, ok)
	}
	if _, ok := h.FindChannel("A"); ok {
		t.Error("found a channel that was never inserted")
	}
}

func TestChannelIterator(t *testing.T) {
	h := testHeader()
	h.InsertChannel("G", NewChannel(PixelTypeHalf))
	it := h.Channels().Iterator()

	collect := func() []string {
		var names []string
		for {
			name, _, ok := it.Next()
			if !ok {
				return names
			}
			names = append(names, name)
		}
	}
	first := collect()
	if !slices.Equal(first, []string{"R", "G"}) {
		t.Fatalf("first pass = %v", first)
	}
	if _, _, ok := it.Next(); ok {
		t.Error("Next after end returned ok")
	}
	it.Reset()
	if second := collect(); !slices.Equal(first, second) {
		t.Errorf("second pass = %v, want %v", second, first)
	}
	it.Release()
	it.Reset()
	if _, _, ok := it.Next(); ok {
		t.Error("Next after Release returned ok")
	}

	var scoped []string
	for name, ch := range h.Channels().All() {
		scoped = append(scoped, name+":"+ch.Type.String())
	}
	if !slices.Equal(scoped, []string{"R:float", "G:half"}) {
		t.Errorf("All = %v", scoped)
	}
}

func TestHeaderOptionalAttributes(t *testing.T) {
	h := testHeader()
	if _, ok := h.Envmap(); ok {
		t.Error("new header has envmap")
	}
	if h.MultiView() != nil {
		t.Error("new header has multiView")
	}

	h.SetEnvmap(EnvmapCube)
	h.SetMultiView([]string{"left", "right"})
	if e, ok := h.Envmap(); !ok || e != EnvmapCube {
		t.Errorf("Envmap = %v, %v", e, ok)
	}
	if !slices.Equal(h.MultiView(), []string{"left", "right"}) {
		t.Errorf("MultiView = %v", h.MultiView())
	}
	if !h.HasAttribute("envmap") || !h.HasAttribute("multiView") || !h.HasAttribute("dataWindow") {
		t.Errorf("attributes = %v", h.AttributeNames())
	}

	h.EraseAttribute("envmap")
	h.EraseAttribute("multiView")
	h.EraseAttribute("doesNotExist")
	h.EraseAttribute("dataWindow")
	if h.HasAttribute("envmap") || h.HasAttribute("multiView") {
		t.Errorf("erase left %v", h.AttributeNames())
	}
	if h.DataWindow() != (Box2i{Max: V2i{15, 15}}) {
		t.Error("erasing a required attribute changed the header")
	}
}

func TestHeaderCloneIsDeep(t *testing.T) {
	h := testHeader()
	h.SetMultiView([]string{"a"})
	c := h.Clone()
	c.InsertChannel("Z", NewChannel(PixelTypeFloat))
	c.SetMultiView([]string{"b"})
	c.SetDataWindow(NewBox2i(1, 1, 2, 2))
	if _, ok := h.FindChannel("Z"); ok {
		t.Error("clone shares channel list")
	}
	if h.MultiView()[0] != "a" || h.DataWindow() == c.DataWindow() {
		t.Error("clone shares fields")
	}
}

func TestHeaderSanityCheck(t *testing.T) {
	tests := []struct {
		name   string
		modify func(h *Header)
		ok     bool
	}{
		{"valid", func(h *Header) {}, true},
		{"empty display window", func(h *Header) { h.SetDisplayWindow(Box2i{Min: V2i{5, 5}, Max: V2i{4, 4}}) }, false},
		{"empty data window", func(h *Header) { h.SetDataWindow(Box2i{Min: V2i{0, 3}, Max: V2i{10, 2}}) }, false},
		{"zero aspect", func(h *Header) { h.SetPixelAspectRatio(0) }, false},
		{"negative screen width", func(h *Header) { h.SetScreenWindowWidth(-1) }, false},
		{"bad line order", func(h *Header) { h.SetLineOrder(7) }, false},
		{"bad compression", func(h *Header) { h.SetCompression(10) }, false},
		{"no channels", func(h *Header) { h.channels = ChannelList{} }, false},
		{"zero sampling", func(h *Header) { h.InsertChannel("R", Channel{Type: PixelTypeFloat}) }, false},
		{"bad pixel type", func(h *Header) { h.InsertChannel("R", Channel{Type: 3, XSampling: 1, YSampling: 1}) }, false},
		{"sampling divides window", func(h *Header) {
			h.InsertChannel("C", Channel{Type: PixelTypeHalf, XSampling: 2, YSampling: 2})
		}, true},
		{"sampling does not divide width", func(h *Header) {
			h.InsertChannel("C", Channel{Type: PixelTypeHalf, XSampling: 3, YSampling: 1})
		}, false},
		{"odd origin with sampling", func(h *Header) {
			h.SetDataWindow(NewBox2i(1, 0, 16, 16))
			h.InsertChannel("C", Channel{Type: PixelTypeHalf, XSampling: 2, YSampling: 1})
		}, false},
		{"data window outside display window", func(h *Header) { h.SetDataWindow(NewBox2i(-8, -8, 4, 4)) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := testHeader()
			tt.modify(h)
			err := h.sanityCheck()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidHeader) {
				t.Errorf("got %v, want ErrInvalidHeader", err)
			}
		})
	}
}

func TestHeaderEncodeRoundTrip(t *testing.T) {
	h := NewHeader(NewBox2i(-4, -4, 40, 30), NewBox2i(0, 2, 16, 8), 1.25, V2f{0.5, 0.5}, 3,
		LineOrderDecreasingY, CompressionZIP)
	h.InsertChannel("Y", NewChannel(PixelTypeHalf))
	h.InsertChannel("BY", Channel{Type: PixelTypeHalf, XSampling: 2, YSampling: 2, PLinear: true})
	h.InsertChannel("id", NewChannel(PixelTypeUint))
	h.SetEnvmap(EnvmapLatLong)
	h.SetMultiView([]string{"left", "right", ""})
	h.extra = append(h.extra, rawAttribute{name: "owner", typeName: "string", value: []byte("someone")})

	got, err := readHeader(NewMemoryIStream("hdr", encodeHeader(h)))
	if err != nil {
		t.Fatalf("readHeader: %v", err)
	}
	if got.DisplayWindow() != h.DisplayWindow() || got.DataWindow() != h.DataWindow() {
		t.Errorf("windows %v %v", got.DisplayWindow(), got.DataWindow())
	}
	if got.PixelAspectRatio() != 1.25 || got.ScreenWindowCenter() != (V2f{0.5, 0.5}) || got.ScreenWindowWidth() != 3 {
		t.Error("camera fields differ")
	}
	if got.LineOrder() != LineOrderDecreasingY || got.Compression() != CompressionZIP {
		t.Error("line order or compression differ")
	}
	if names := got.Channels().Names(); !slices.Equal(names, []string{"BY", "Y", "id"}) {
		t.Errorf("channels = %v, want sorted", names)
	}
	for name, want := range h.Channels().All() {
		if ch, ok := got.FindChannel(name); !ok || ch != want {
			t.Errorf("%s = %+v, want %+v", name, ch, want)
		}
	}
	if e, ok := got.Envmap(); !ok || e != EnvmapLatLong {
		t.Errorf("envmap %v %v", e, ok)
	}
	if !slices.Equal(got.MultiView(), []string{"left", "right", ""}) {
		t.Errorf("multiView %q", got.MultiView())
	}
	if !got.HasAttribute("owner") {
		t.Error("unknown attribute dropped")
	}
}

func TestReadHeaderRejects(t *testing.T) {
	good := encodeHeader(testHeader())
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrEndOfData},
		{"not exr", []byte("P6\n16 16\n255\n..."), ErrNotOpenEXR},
		{"tiled", withVersion(good, 2|flagTiled), ErrUnsupportedVersion},
		{"multipart", withVersion(good, 2|flagMultiPart), ErrUnsupportedVersion},
		{"version 1", withVersion(good, 1), ErrUnsupportedVersion},
		{"truncated", good[:len(good)-10], ErrEndOfData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readHeader(NewMemoryIStream(tt.name, tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func withVersion(data []byte, v uint32) []byte {
	out := slices.Clone(data)
	out[4], out[5], out[6], out[7] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
	return out
}

func TestReadHeaderMissingRequired(t *testing.T) {
	var w xdrWriter
	w.Uint32(magicNumber)
	w.Uint32(fileVersion)
	w.CString("compression")
	w.CString("compression")
	w.Int32(1)
	w.Uint8(0)
	w.Uint8(0)
	_, err := readHeader(NewMemoryIStream("partial", w.Bytes()))
	if !errors.Is(err, ErrInvalidHeader) {
		t.Errorf("got %v, want ErrInvalidHeader", err)
	}
}
