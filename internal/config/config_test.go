// Copyright (c) 2025 Keywarden Team
// Keywarden - workspace encryption key manager
// This source code is licensed under the MIT license found in the LICENSE file.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	c, err := LoadConfig[Config](nil, Defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if c.Workspace != "default" {
		t.Errorf("expected default workspace, got %q", c.Workspace)
	}
	if c.Language != "en" {
		t.Errorf("expected default language en, got %q", c.Language)
	}
	if c.Debug {
		t.Error("debug should default to false")
	}
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keywarden.yaml")
	content := "workspace: team-a\nlanguage: de\ndebug: true\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	c, err := LoadConfig[Config](nil, Defaults(), &path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if c.Workspace != "team-a" {
		t.Errorf("expected workspace team-a, got %q", c.Workspace)
	}
	if c.Language != "de" {
		t.Errorf("expected language de, got %q", c.Language)
	}
	if !c.Debug {
		t.Error("expected debug true from file")
	}
	// Unset keys keep their defaults.
	if c.VaultPath != "" {
		t.Errorf("expected empty vault_path, got %q", c.VaultPath)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("KEYWARDEN_WORKSPACE", "env-ws")

	c, err := LoadConfig[Config](nil, Defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if c.Workspace != "env-ws" {
		t.Errorf("environment variable not applied: %q", c.Workspace)
	}
}

func TestWriteConfigFile_CreatesFile(t *testing.T) {
	tmp := t.TempDir()
	// Force the user config dir to tmp.
	t.Setenv("XDG_CONFIG_HOME", tmp)

	c := Config{Workspace: "team-a", Language: "de"}
	if err := WriteConfigFile(&c, false); err != nil {
		t.Fatalf("WriteConfigFile failed: %v", err)
	}

	path, err := UserConfigPath()
	if err != nil {
		t.Fatalf("UserConfigPath failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if !strings.Contains(string(data), "workspace: team-a") {
		t.Errorf("workspace missing from written config: %s", data)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("could not stat config file: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
	}

	// A subsequent load picks the written file up from the search path.
	loaded, err := LoadConfig[Config](nil, Defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Workspace != "team-a" || loaded.Language != "de" {
		t.Errorf("written config not loaded back: %+v", loaded)
	}
}

func TestDefaultVaultPath(t *testing.T) {
	path, err := DefaultVaultPath("team-a")
	if err != nil {
		t.Fatalf("DefaultVaultPath failed: %v", err)
	}
	if !strings.HasSuffix(path, filepath.Join("keywarden", "team-a.vault.db")) {
		t.Errorf("unexpected vault path: %q", path)
	}
}
