package main

import (
	"testing"

	"github.com/soocke/ghost/config"
)

func TestParseFlags_OnlySetFlagsApply(t *testing.T) {
	o, err := parseFlags([]string{"-config", "/tmp/x.json", "-mode", "screen", "-flip-h=false", "-sources", "screen,pattern:64x48"})
	if err != nil {
		t.Fatal(err)
	}
	if o.configPath != "/tmp/x.json" {
		t.Fatalf("config path %q", o.configPath)
	}
	cfg := config.DefaultConfig()
	cfg.Width = 800
	o.apply(cfg)
	_ = cfg.Validate()
	if cfg.BlendMode != "screen" || cfg.FlipHorizontal {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if len(cfg.Sources) != 2 || cfg.Sources[1] != "pattern:64x48" {
		t.Fatalf("sources %v", cfg.Sources)
	}
	if cfg.Width != 800 || cfg.FlipVertical {
		t.Fatal("unset flags overrode the config")
	}
}

func TestParseFlags_Error(t *testing.T) {
	if _, err := parseFlags([]string{"-width", "wide"}); err == nil {
		t.Fatal("expected parse error")
	}
}
