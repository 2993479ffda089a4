package config

import "github.com/spf13/viper"

// Config holds all runtime configuration for shipyard.
// Values are populated from .shipyard.yaml, SHIPYARD_* env vars, and CLI flags.
type Config struct {
	// ManifestPath is the package manifest (shipyard.toml).
	ManifestPath string `mapstructure:"manifest_path"`
	// SandboxDir is the isolated build environment directory.
	SandboxDir string `mapstructure:"sandbox_dir"`
	// ToolsetVersion pins the base tool versions installed into the sandbox.
	ToolsetVersion string `mapstructure:"toolset_version"`
	// DistDir receives one versioned archive per top-level package.
	DistDir string `mapstructure:"dist_dir"`
	// DocsRepoDir is the sibling documentation repository checkout.
	DocsRepoDir string `mapstructure:"docs_repo_dir"`
	// DocsBuildCmd builds the documentation for a release (whitespace-split).
	DocsBuildCmd string `mapstructure:"docs_build_cmd"`
	// DocsOutDir is where the docs build writes its output.
	DocsOutDir string `mapstructure:"docs_out_dir"`
	// GitRemote is the canonical remote tags and docs are pushed to.
	GitRemote string `mapstructure:"git_remote"`
	// EnvTool creates the sandbox (an isolated environment manager).
	EnvTool string `mapstructure:"env_tool"`
	// RelnotesTool generates the changelog draft from change fragments.
	RelnotesTool string `mapstructure:"relnotes_tool"`
	// RelnotesIndex is the generated changelog index file, relative to the
	// repository root; its staged state gates regeneration.
	RelnotesIndex string `mapstructure:"relnotes_index"`
	// FetchCmd downloads externally-built release artifacts (whitespace-split).
	FetchCmd string `mapstructure:"fetch_cmd"`
	// UploadTool uploads artifacts with cryptographic signing.
	UploadTool string `mapstructure:"upload_tool"`
	// SigningIdentity is the key identity passed to the upload tool.
	SigningIdentity string `mapstructure:"signing_identity"`
	// HistoryDB is the SQLite run journal path.
	HistoryDB string `mapstructure:"history_db"`
	Verbose   bool   `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() Config {
	viper.SetDefault("manifest_path", "shipyard.toml")
	viper.SetDefault("sandbox_dir", ".shipyard/sandbox")
	viper.SetDefault("toolset_version", "2025.2")
	viper.SetDefault("dist_dir", "dist")
	viper.SetDefault("docs_repo_dir", "../docs-site")
	viper.SetDefault("docs_build_cmd", "make -C docs release")
	viper.SetDefault("docs_out_dir", "docs/_build/html")
	viper.SetDefault("git_remote", "origin")
	viper.SetDefault("env_tool", "virtualenv")
	viper.SetDefault("relnotes_tool", "towncrier")
	viper.SetDefault("relnotes_index", "docs/relnotes/index.rst")
	viper.SetDefault("fetch_cmd", "")
	viper.SetDefault("upload_tool", "twine")
	viper.SetDefault("signing_identity", "")
	viper.SetDefault("history_db", ".shipyard/history.db")
	viper.SetDefault("verbose", false)

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}
