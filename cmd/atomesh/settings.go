package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ayusman/atomesh/internal/config"
	"github.com/ayusman/atomesh/internal/store"
)

func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".atomesh"
	}
	return filepath.Join(homeDir, ".atomesh")
}

func openStore() (*store.Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	st, err := store.New(filepath.Join(dataDir, "atomesh.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	return st, nil
}

// loadSettings builds the runtime configuration: defaults, then the config
// file, then the named preset (flag, else the saved active preset), then
// individual flags.
func loadSettings(st *store.Store) (*config.Config, error) {
	settings := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		settings = loaded
	}
	if settings.DataDir == "" {
		settings.DataDir = dataDir
	}
	if settings.HookDir == "" {
		settings.HookDir = filepath.Join(settings.DataDir, "hooks")
	}

	name := preset
	if name == "" {
		active, err := st.Settings().Get(store.SettingActivePreset)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		name = active
	}
	if name != "" {
		t, err := resolvePreset(st, name)
		if err != nil {
			return nil, err
		}
		settings.Tunables = t
	}

	if cameraID >= 0 {
		settings.CameraID = cameraID
	}
	return settings, settings.Validate()
}

// resolvePreset looks a name up among the built-in presets, then the saved ones.
func resolvePreset(st *store.Store, name string) (config.Tunables, error) {
	if t := config.GetPreset(name); t != nil {
		return *t, nil
	}
	p, err := st.Presets().GetByName(name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return config.Tunables{}, fmt.Errorf("unknown preset %q", name)
		}
		return config.Tunables{}, err
	}
	return p.Tunables, nil
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.atomesh/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeWebDir := filepath.Join(defaultDataDir(), "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}

func viewerURL(listenAddr string) string {
	host := listenAddr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	return "http://" + host + "/"
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
