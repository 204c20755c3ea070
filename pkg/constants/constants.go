// Package constants provides shared constants used throughout hookcfg
package constants

// Version is the pre-commit release whose configuration format hookcfg
// implements. minimum_pre_commit_version is checked against it.
const Version = "4.2.0"

// Configuration file names
const (
	// ConfigFileName is the default project configuration file
	ConfigFileName = ".pre-commit-config.yaml"
	// ManifestFileName is the hook definition file at the root of a hook repository
	ManifestFileName = ".pre-commit-hooks.yaml"
)

// Repository sentinels
const (
	// LocalRepo marks hooks defined inline in the project configuration
	LocalRepo = "local"
	// MetaRepo marks hooks implemented by hookcfg itself
	MetaRepo = "meta"
)

// Environment variables read or exported by hookcfg
const (
	EnvPreCommitHome = "PRE_COMMIT_HOME"
	EnvXDGCacheHome  = "XDG_CACHE_HOME"
	EnvSkip          = "SKIP"
	EnvNoColor       = "NO_COLOR"
	EnvColor         = "PRE_COMMIT_COLOR"
	EnvPreCommit     = "PRE_COMMIT"
	EnvHookStage     = "PRE_COMMIT_HOOK_STAGE"
	EnvFromRef       = "PRE_COMMIT_FROM_REF"
	EnvToRef         = "PRE_COMMIT_TO_REF"
)

// Exit codes
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitUnexpected = 3
)

// Variables describing the git hook that triggered a run
const (
	EnvRemoteName        = "PRE_COMMIT_REMOTE_NAME"
	EnvRemoteURL         = "PRE_COMMIT_REMOTE_URL"
	EnvLocalBranch       = "PRE_COMMIT_LOCAL_BRANCH"
	EnvRemoteBranch      = "PRE_COMMIT_REMOTE_BRANCH"
	EnvCommitMsgFilename = "PRE_COMMIT_COMMIT_MSG_FILENAME"
	EnvCommitMsgSource   = "PRE_COMMIT_COMMIT_MSG_SOURCE"
	EnvCommitObjectName  = "PRE_COMMIT_COMMIT_OBJECT_NAME"
	EnvCheckoutType      = "PRE_COMMIT_CHECKOUT_TYPE"
	EnvIsSquashMerge     = "PRE_COMMIT_IS_SQUASH_MERGE"
	EnvRewriteCommand    = "PRE_COMMIT_REWRITE_COMMAND"
	EnvPreRebaseUpstream = "PRE_COMMIT_PRE_REBASE_UPSTREAM"
	EnvPreRebaseBranch   = "PRE_COMMIT_PRE_REBASE_BRANCH"
	EnvAllowNoConfig     = "PRE_COMMIT_ALLOW_NO_CONFIG"
)
