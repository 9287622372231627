// Package config loads release train configurations into an immutable
// model.Registry together with the settings used to synchronize the
// module repositories.
//
// Documents are written in CUE or YAML and are validated against the
// embedded CUE schema before they are turned into model types.
//
// # Basic Usage
//
// Load a configuration from disk:
//
//	import (
//	    "context"
//	    fsb "github.com/input-output-hk/catalyst-forge-libs/fs/billy"
//	    "github.com/input-output-hk/catalyst-forge-libs/releasetrain/config"
//	)
//
//	func main() {
//	    ctx := context.Background()
//	    cfg, err := config.Load(ctx, fsb.NewOSFS("."), "release-trains.cue")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    hopper := cfg.Registry.MustTrain("Hopper")
//	    sync, err := cfg.Synchronizer()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    result, err := sync.Update(ctx, hopper)
//	}
//
// Use the embedded reference configuration:
//
//	cfg, err := config.Default(ctx)
package config

import (
	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/model"
)

// Format identifies the syntax of a configuration document.
type Format string

const (
	// FormatCUE is a CUE document.
	FormatCUE Format = "cue"

	// FormatYAML is a YAML document.
	FormatYAML Format = "yaml"
)

// Document is the decoded form of a configuration file. Field names follow
// the CUE schema.
type Document struct {
	Naming   Naming     `json:"naming,omitempty" yaml:"naming,omitempty"`
	Trackers []Tracker  `json:"trackers,omitempty" yaml:"trackers,omitempty"`
	Projects []Project  `json:"projects" yaml:"projects"`
	Trains   []Train    `json:"trains" yaml:"trains"`
	Git      GitSection `json:"git,omitempty" yaml:"git,omitempty"`
}

// Naming holds the prefixes used to derive project names that are not
// given explicitly.
type Naming struct {
	// FullNamePrefix is prepended to the project name, e.g. "Spring Data ".
	FullNamePrefix string `json:"fullNamePrefix,omitempty" yaml:"fullNamePrefix,omitempty"`

	// FolderPrefix is prepended to the lower-cased name to form the repository name.
	FolderPrefix string `json:"folderPrefix,omitempty" yaml:"folderPrefix,omitempty"`

	// DependencyPropertyPrefix is prepended to the lower-cased name to form
	// the dependency property.
	DependencyPropertyPrefix string `json:"dependencyPropertyPrefix,omitempty" yaml:"dependencyPropertyPrefix,omitempty"`
}

// Tracker declares an issue tracker in addition to the built-in GitHub and Jira ones.
type Tracker struct {
	Name    string `json:"name" yaml:"name"`
	Pattern string `json:"pattern" yaml:"pattern"`
}

// Artifact is an additional artifact coordinate.
type Artifact struct {
	GroupID    string `json:"groupId" yaml:"groupId"`
	ArtifactID string `json:"artifactId" yaml:"artifactId"`
}

// Project declares a project. Projects are listed in build order.
type Project struct {
	Key                    string     `json:"key" yaml:"key"`
	Name                   string     `json:"name" yaml:"name"`
	FullName               string     `json:"fullName,omitempty" yaml:"fullName,omitempty"`
	Repository             string     `json:"repository,omitempty" yaml:"repository,omitempty"`
	DependencyProperty     string     `json:"dependencyProperty,omitempty" yaml:"dependencyProperty,omitempty"`
	Tracker                string     `json:"tracker,omitempty" yaml:"tracker,omitempty"`
	Dependencies           []string   `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	SkipTests              bool       `json:"skipTests,omitempty" yaml:"skipTests,omitempty"`
	ShortVersionMilestones bool       `json:"shortVersionMilestones,omitempty" yaml:"shortVersionMilestones,omitempty"`
	Maintainer             string     `json:"maintainer,omitempty" yaml:"maintainer,omitempty"`
	AdditionalArtifacts    []Artifact `json:"additionalArtifacts,omitempty" yaml:"additionalArtifacts,omitempty"`
}

// Train declares a train. Trains are listed in release order.
//
// The iteration sequence is either listed explicitly in Iterations or
// built from the Milestones, ReleaseCandidates and ServiceReleases counts.
type Train struct {
	Name              string   `json:"name" yaml:"name"`
	Calver            string   `json:"calver,omitempty" yaml:"calver,omitempty"`
	Commercial        bool     `json:"commercial,omitempty" yaml:"commercial,omitempty"`
	Iterations        []string `json:"iterations,omitempty" yaml:"iterations,omitempty"`
	Milestones        int      `json:"milestones,omitempty" yaml:"milestones,omitempty"`
	ReleaseCandidates int      `json:"releaseCandidates,omitempty" yaml:"releaseCandidates,omitempty"`
	ServiceReleases   int      `json:"serviceReleases,omitempty" yaml:"serviceReleases,omitempty"`
	Modules           []Module `json:"modules" yaml:"modules"`
}

// Module declares the version of a project within a train.
type Module struct {
	Project       string `json:"project" yaml:"project"`
	Version       string `json:"version" yaml:"version"`
	BranchVersion bool   `json:"branchVersion,omitempty" yaml:"branchVersion,omitempty"`
}

// GitSection configures mirror synchronization.
type GitSection struct {
	// RemoteBase is the URL prefix of project repositories.
	RemoteBase string `json:"remoteBase,omitempty" yaml:"remoteBase,omitempty"`

	// Remotes overrides the remote URL per project key.
	Remotes map[string]string `json:"remotes,omitempty" yaml:"remotes,omitempty"`

	// Workspace is the directory holding the mirrors.
	Workspace string `json:"workspace,omitempty" yaml:"workspace,omitempty"`

	Concurrency  int          `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
	FetchTimeout string       `json:"fetchTimeout,omitempty" yaml:"fetchTimeout,omitempty"`
	Transport    string       `json:"transport,omitempty" yaml:"transport,omitempty"`
	Retry        RetrySection `json:"retry,omitempty" yaml:"retry,omitempty"`
	Auth         AuthSection  `json:"auth,omitempty" yaml:"auth,omitempty"`
}

// RetrySection configures retries of transient failures.
type RetrySection struct {
	MaxAttempts int    `json:"maxAttempts,omitempty" yaml:"maxAttempts,omitempty"`
	BaseDelay   string `json:"baseDelay,omitempty" yaml:"baseDelay,omitempty"`
	MaxDelay    string `json:"maxDelay,omitempty" yaml:"maxDelay,omitempty"`
}

// AuthSection configures credentials for remote access.
type AuthSection struct {
	// Username is sent with the token. Empty means token-only authentication.
	Username string `json:"username,omitempty" yaml:"username,omitempty"`

	// TokenEnv names the environment variable holding the HTTPS token.
	TokenEnv string `json:"tokenEnv,omitempty" yaml:"tokenEnv,omitempty"`

	SSHAgent   bool     `json:"sshAgent,omitempty" yaml:"sshAgent,omitempty"`
	SSHKeyFile string   `json:"sshKeyFile,omitempty" yaml:"sshKeyFile,omitempty"`
	KnownHosts []string `json:"knownHosts,omitempty" yaml:"knownHosts,omitempty"`
}

// Config is a loaded configuration.
type Config struct {
	// Registry holds the projects and trains.
	Registry *model.Registry

	// Settings holds the synchronization settings.
	Settings Settings
}
