package shellconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParse_Full(t *testing.T) {
	cfg, err := Parse([]byte(`
window:
  title: Zoo Desktop
  width: 1280
  height: 720
  url: http://localhost:4000
bridge:
  addr: 127.0.0.1:9700
  path: /ipc
dev:
  command: ["mix", "phx.server"]
  dir: ./server
  env:
    MIX_ENV: dev
  url: http://localhost:4000
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if cfg.Window.Title != "Zoo Desktop" || cfg.Window.Width != 1280 {
		t.Fatalf("window not parsed: %+v", cfg.Window)
	}
	if cfg.Bridge.Addr != "127.0.0.1:9700" || cfg.Bridge.Path != "/ipc" {
		t.Fatalf("bridge not parsed: %+v", cfg.Bridge)
	}
	if len(cfg.Dev.Command) != 2 || cfg.Dev.Command[0] != "mix" {
		t.Fatalf("dev command not parsed: %+v", cfg.Dev)
	}
	if cfg.Dev.Env["MIX_ENV"] != "dev" {
		t.Fatalf("dev env not parsed: %+v", cfg.Dev.Env)
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(`window: {title: Minimal}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Window.Width != 800 || cfg.Window.Height != 600 {
		t.Fatalf("defaults not applied: %+v", cfg.Window)
	}
	if cfg.Bridge.Addr != "127.0.0.1:9631" || cfg.Bridge.Path != "/bridge" {
		t.Fatalf("bridge defaults not applied: %+v", cfg.Bridge)
	}
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad yaml":        `window: [`,
		"zero width":      `window: {width: 0, height: 100}`,
		"negative height": `window: {width: 100, height: -1}`,
		"empty addr":      `bridge: {addr: ""}`,
		"relative path":   `bridge: {path: bridge}`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(src)); err == nil {
				t.Fatalf("expected %s to be rejected", name)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shell.yaml")
	if err := os.WriteFile(path, []byte(`window: {title: FromDisk}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Window.Title != "FromDisk" {
		t.Fatalf("unexpected title: %q", cfg.Window.Title)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("missing file should error")
	}
}
