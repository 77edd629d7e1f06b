package buildinfo

import (
	"runtime"
	"runtime/debug"
)

// set with -ldflags "-X github.com/darmiel/doipv/internal/buildinfo.Version=..."
var (
	Version    = "v0.1.0"
	CommitHash = "unknown"
)

const (
	Service = "doipv"
	About   = "https://github.com/darmiel/doipv"
)

type Info struct {
	About      string `json:"about,omitempty"`
	Service    string `json:"service,omitempty"`
	Version    string `json:"version,omitempty"`
	CommitHash string `json:"commit_hash,omitempty"`
	GoVersion  string `json:"go_version,omitempty"`
}

func GetBuildInfo() Info {
	return Info{
		About:      About,
		Service:    Service,
		Version:    Version,
		CommitHash: commit(),
		GoVersion:  runtime.Version(),
	}
}

// commit falls back to the VCS revision recorded by the go tool.
func commit() string {
	if CommitHash != "unknown" {
		return CommitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return s.Value
			}
		}
	}
	return CommitHash
}

// UserAgent is sent with outgoing requests unless configured otherwise.
func UserAgent() string {
	return Service + "/" + Version + " (+" + About + ")"
}
