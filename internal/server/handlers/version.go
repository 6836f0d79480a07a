package handlers

import (
	"net/http"
	"runtime"
	"sync"
)

// VersionResponse carries build and runtime information.
type VersionResponse struct {
	App     AppVersion  `json:"app"`
	Runtime RuntimeInfo `json:"runtime"`
}

// AppVersion describes the running binary.
type AppVersion struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version"`
}

// RuntimeInfo describes the process environment.
type RuntimeInfo struct {
	Platform      string `json:"platform"`
	NumCPU        int    `json:"num_cpu"`
	NumGoroutines int    `json:"num_goroutines"`
}

var (
	versionMu sync.RWMutex
	appInfo   = AppVersion{Name: "notiva", Version: "dev"}
)

// SetVersionInfo records build metadata injected at link time.
func SetVersionInfo(version, commit, buildDate string) {
	versionMu.Lock()
	defer versionMu.Unlock()
	if version != "" {
		appInfo.Version = version
	}
	appInfo.Commit = commit
	appInfo.BuildDate = buildDate
}

// VersionHandler reports build and runtime details.
func VersionHandler(w http.ResponseWriter, r *http.Request) {
	versionMu.RLock()
	app := appInfo
	versionMu.RUnlock()
	app.GoVersion = runtime.Version()

	respondJSON(w, http.StatusOK, VersionResponse{
		App: app,
		Runtime: RuntimeInfo{
			Platform:      runtime.GOOS + "/" + runtime.GOARCH,
			NumCPU:        runtime.NumCPU(),
			NumGoroutines: runtime.NumGoroutine(),
		},
	})
}
