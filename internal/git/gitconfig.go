package git

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// RemoteSection is one [remote "name"] block of a .git/config file.
type RemoteSection struct {
	URL   string `ini:"url"`
	Fetch string `ini:"fetch"`
}

// BranchSection is one [branch "name"] block of a .git/config file.
type BranchSection struct {
	Remote string `ini:"remote"`
	Merge  string `ini:"merge"`
}

// RepoConfig is the parsed view of a working tree's .git/config, used to
// validate remote and branch wiring without spawning git.
type RepoConfig struct {
	Remotes  map[string]RemoteSection
	Branches map[string]BranchSection
}

// HasRemote reports whether the named remote is configured.
func (c *RepoConfig) HasRemote(name string) bool {
	_, ok := c.Remotes[name]
	return ok
}

// LoadRepoConfig parses <repoPath>/.git/config. The path must point at a
// working tree containing a .git directory.
func LoadRepoConfig(repoPath string) (*RepoConfig, error) {
	gitDir := filepath.Join(repoPath, ".git")
	if info, err := os.Stat(gitDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("not a git repo: %s", repoPath)
	}

	cfg, err := ini.Load(filepath.Join(gitDir, "config"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse git config for %s: %w", repoPath, err)
	}

	repoCfg := &RepoConfig{
		Remotes:  make(map[string]RemoteSection),
		Branches: make(map[string]BranchSection),
	}

	for _, sec := range cfg.Sections() {
		name, ok := sectionName(sec.Name(), "remote")
		if !ok || !sec.HasKey("url") {
			continue
		}

		var remote RemoteSection
		if err := sec.MapTo(&remote); err != nil {
			return nil, err
		}

		repoCfg.Remotes[name] = remote
	}

	for _, sec := range cfg.Sections() {
		name, ok := sectionName(sec.Name(), "branch")
		if !ok {
			continue
		}

		var branch BranchSection
		if err := sec.MapTo(&branch); err != nil {
			return nil, err
		}

		repoCfg.Branches[name] = branch
	}

	return repoCfg, nil
}

// sectionName extracts "origin" from `remote "origin"` style headers.
func sectionName(section, kind string) (string, bool) {
	prefix := kind + ` "`
	if !strings.HasPrefix(section, prefix) || !strings.HasSuffix(section, `"`) {
		return "", false
	}

	return section[len(prefix) : len(section)-1], true
}
