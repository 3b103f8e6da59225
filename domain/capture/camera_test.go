package capture

import "testing"

func TestCameraSource_Caps(t *testing.T) {
	cases := []struct {
		cfg  CameraConfig
		want string
	}{
		{CameraConfig{}, "video/x-raw,format=RGBA,framerate=30/1"},
		{CameraConfig{Width: 1280, Height: 720, FPS: 15}, "video/x-raw,format=RGBA,width=1280,height=720,framerate=15/1"},
		{CameraConfig{Width: 640, FPS: 29.97}, "video/x-raw,format=RGBA,framerate=30/1"},
		{CameraConfig{FPS: 0.2}, "video/x-raw,format=RGBA,framerate=1/1"},
	}
	for _, c := range cases {
		src := NewCameraSource(discardLogger, c.cfg)
		if got := src.capsString(); got != c.want {
			t.Errorf("%+v: caps %q, want %q", c.cfg, got, c.want)
		}
	}
}

func TestCameraSource_Defaults(t *testing.T) {
	src := NewCameraSource(discardLogger, CameraConfig{})
	if src.Name() != "camera:/dev/video0" || src.Running() {
		t.Fatalf("unexpected defaults: %q running=%v", src.Name(), src.Running())
	}
	if snap := src.LatestFrame(); snap.Image != nil {
		t.Fatal("frame before start")
	}
}
