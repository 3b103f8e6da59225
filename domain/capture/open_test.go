package capture

import (
	"errors"
	"image"
	"testing"
)

func TestOpen_Kinds(t *testing.T) {
	cases := []struct {
		spec string
		name string
	}{
		{"pattern", "pattern:640x480"},
		{"pattern:320x200", "pattern:320x200"},
		{"screen", "screen"},
		{"screen:10,20,300,200", "screen:10,20,300,200"},
		{"camera:/dev/video2", "camera:/dev/video2"},
		{"camera", "camera:/dev/video0"},
	}
	for _, c := range cases {
		src, err := Open(discardLogger, c.spec, OpenOptions{})
		if err != nil {
			t.Fatalf("%s: %v", c.spec, err)
		}
		if src.Running() {
			t.Fatalf("%s: source started by Open", c.spec)
		}
		if src.Name() != c.name {
			t.Errorf("%s: name %q want %q", c.spec, src.Name(), c.name)
		}
	}
}

func TestOpen_PatternUsesSizeHint(t *testing.T) {
	src, err := Open(discardLogger, "pattern", OpenOptions{Width: 100, Height: 50})
	if err != nil {
		t.Fatal(err)
	}
	if src.Name() != "pattern:100x50" {
		t.Fatalf("name %q", src.Name())
	}
}

func TestOpen_Errors(t *testing.T) {
	if _, err := Open(discardLogger, "webcam", OpenOptions{}); !errors.Is(err, ErrUnknownDevice) {
		t.Fatalf("expected ErrUnknownDevice, got %v", err)
	}
	for _, spec := range []string{"still:", "screen:1,2,3", "screen:0,0,0,10", "pattern:abc", "pattern:10xq"} {
		if _, err := Open(discardLogger, spec, OpenOptions{}); err == nil {
			t.Errorf("%q: expected error", spec)
		}
	}
}

func TestParseRegion(t *testing.T) {
	r, err := parseRegion(" 5, 6 ,7,8")
	if err != nil {
		t.Fatal(err)
	}
	if r != image.Rect(5, 6, 12, 14) {
		t.Fatalf("region %v", r)
	}
}
