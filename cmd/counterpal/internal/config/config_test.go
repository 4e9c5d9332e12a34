package config

import (
	"path/filepath"
	"testing"
)

func TestContextLifecycle(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir())
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if _, err := cfg.ResolveContext(""); err == nil {
		t.Fatal("expected error with no current context")
	}

	if err := cfg.AddContext("shop"); err != nil {
		t.Fatalf("AddContext: %v", err)
	}
	if err := cfg.AddContext("shop"); err == nil {
		t.Fatal("expected error adding duplicate context")
	}
	if err := cfg.UseContext("shop"); err != nil {
		t.Fatalf("UseContext: %v", err)
	}

	dir, err := cfg.ResolveContext("")
	if err != nil {
		t.Fatalf("ResolveContext: %v", err)
	}
	if dir != cfg.ContextDir("shop") {
		t.Fatalf("resolved %q, want %q", dir, cfg.ContextDir("shop"))
	}

	// The current context survives a reload.
	cfg2, err := LoadFrom(cfg.Dir)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg2.CurrentContext != "shop" {
		t.Fatalf("CurrentContext = %q, want shop", cfg2.CurrentContext)
	}

	names, err := cfg.ListContexts()
	if err != nil {
		t.Fatalf("ListContexts: %v", err)
	}
	if len(names) != 1 || names[0] != "shop" {
		t.Fatalf("ListContexts = %v, want [shop]", names)
	}

	if err := cfg.DeleteContext("shop"); err != nil {
		t.Fatalf("DeleteContext: %v", err)
	}
	if cfg.CurrentContext != "" {
		t.Fatalf("CurrentContext = %q after delete, want empty", cfg.CurrentContext)
	}
	if _, err := cfg.ResolveContext("shop"); err == nil {
		t.Fatal("expected error resolving deleted context")
	}
}

func TestServiceRoundTrip(t *testing.T) {
	dir := t.TempDir()

	// A fresh context has no config file and yields a zero Service.
	svc, err := LoadService(dir)
	if err != nil {
		t.Fatalf("LoadService: %v", err)
	}
	if *svc != (Service{}) {
		t.Fatalf("LoadService on empty dir = %+v, want zero", svc)
	}

	want := &Service{
		APIKey:     "k-123",
		LiveModel:  "custom-live",
		Menu:       "menu.yaml",
		ArchiveDir: "archive",
	}
	if err := SaveService(dir, want); err != nil {
		t.Fatalf("SaveService: %v", err)
	}
	got, err := LoadService(dir)
	if err != nil {
		t.Fatalf("LoadService: %v", err)
	}
	if *got != *want {
		t.Fatalf("LoadService = %+v, want %+v", got, want)
	}
}

func TestResolvePath(t *testing.T) {
	dir := filepath.Join("home", "ctx")
	if got := ResolvePath(dir, ""); got != "" {
		t.Fatalf("empty path = %q, want empty", got)
	}
	if got := ResolvePath(dir, "menu.yaml"); got != filepath.Join(dir, "menu.yaml") {
		t.Fatalf("relative path = %q", got)
	}
	abs := string(filepath.Separator) + "etc"
	if got := ResolvePath(dir, abs); got != abs {
		t.Fatalf("absolute path = %q, want %q", got, abs)
	}
}

func TestAPIKeyFor(t *testing.T) {
	svc := &Service{APIKey: "from-config"}

	t.Setenv("GEMINI_API_KEY", "")
	if got := APIKeyFor(svc); got != "from-config" {
		t.Fatalf("APIKeyFor = %q, want from-config", got)
	}

	t.Setenv("GEMINI_API_KEY", "from-env")
	if got := APIKeyFor(svc); got != "from-env" {
		t.Fatalf("APIKeyFor = %q, want from-env", got)
	}
}
