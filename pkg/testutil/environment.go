package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/devup-sh/devup/pkg/config"
	"github.com/devup-sh/devup/pkg/dotfiles"
	"github.com/devup-sh/devup/pkg/repos"
)

// PipelineEnv is a complete pipeline test fixture: a temp target
// root, a declared dotfile and repository set covering every mode,
// and recording stubs for all collaborators.
type PipelineEnv struct {
	Cfg        *config.Config
	Git        *StubGit
	Installers *StubInstallers
	Out        *bytes.Buffer
	TargetRoot string
	SourceRoot string
}

// MarkerLine is the required managed include used by the fixture's
// marker-copy mapping.
const MarkerLine = "source ~/.devup/shell/init.sh"

// NewPipelineEnv builds the fixture with an identity already present
// in the stub git config; tests exercising the prompt clear it.
func NewPipelineEnv(t *testing.T) *PipelineEnv {
	t.Helper()

	targetRoot := t.TempDir()
	sourceRoot := filepath.Join(targetRoot, ".devup", "dotfiles")
	seedSources(t, sourceRoot)

	git := NewStubGit()
	git.Config["user.name"] = "Ada Lovelace"
	git.Config["user.email"] = "ada@example.com"

	cfg := &config.Config{
		TargetRoot:      targetRoot,
		SourceRoot:      sourceRoot,
		CloudAuthScript: "cloud-auth.sh",
		Packages:        []string{"git", "openssl"},
		Toolchains:      []config.Toolchain{{Name: "ruby", Version: "3.3.4"}},
		Dotfiles: []dotfiles.Mapping{
			{Source: "zshrc", Dest: ".zshrc", Mode: dotfiles.ModeMarkerCopy, Marker: MarkerLine},
			{Source: "init.sh", Dest: ".devup/shell/init.sh", Mode: dotfiles.ModeSymlink},
			{Source: "irbrc", Dest: ".irbrc", Mode: dotfiles.ModeCopyIfAbsent},
		},
		Repos: []repos.Spec{
			{Name: "devup-tool", URL: "https://example.com/org/devup-tool.git",
				Dest: "src/devup-tool", Mode: repos.ModeBootstrap, Mandatory: true},
			{Name: "main-project", URL: "git@example.com:org/main-project.git",
				Dest: "src/main-project", Mode: repos.ModeInjected,
				Mandatory: true, RequiresAuth: true, Main: true},
		},
	}

	return &PipelineEnv{
		Cfg:        cfg,
		Git:        git,
		Installers: &StubInstallers{},
		Out:        &bytes.Buffer{},
		TargetRoot: targetRoot,
		SourceRoot: sourceRoot,
	}
}

func seedSources(t *testing.T, sourceRoot string) {
	t.Helper()
	if err := os.MkdirAll(sourceRoot, 0755); err != nil {
		t.Fatalf("failed to seed source root: %v", err)
	}
	files := map[string]string{
		"zshrc":   "# template\n" + MarkerLine + "\n",
		"init.sh": "export DEVUP_HOME=\"$HOME/.devup\"\n",
		"irbrc":   "IRB.conf[:SAVE_HISTORY] = 1000\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(sourceRoot, name), []byte(content), 0644); err != nil {
			t.Fatalf("failed to seed %s: %v", name, err)
		}
	}
}
