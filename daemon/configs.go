package daemon

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ConfigInfo describes one configured daemon instance.
type ConfigInfo struct {
	// Name is the config name passed to the daemon, e.g. "maestral".
	Name string
	// Path is the local Dropbox folder.
	Path string
	// AccountID is the linked account, empty when unlinked.
	AccountID string
}

// ListConfigs returns the daemon configs found in the user's maestral
// config directory, sorted by name.
func ListConfigs() ([]ConfigInfo, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	dir := filepath.Join(homeDir, ".config", "maestral")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dir = filepath.Join(xdg, "maestral")
	}
	return ListConfigsIn(dir)
}

// ListConfigsIn returns the daemon configs stored in dir.
// A missing directory yields no configs.
func ListConfigsIn(dir string) ([]ConfigInfo, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.ini"))
	if err != nil {
		return nil, fmt.Errorf("failed to list configs: %w", err)
	}

	configs := make([]ConfigInfo, 0, len(files))
	for _, file := range files {
		info, err := readConfig(file)
		if err != nil {
			return nil, err
		}
		configs = append(configs, info)
	}

	sort.Slice(configs, func(i, j int) bool {
		return configs[i].Name < configs[j].Name
	})
	return configs, nil
}

// readConfig picks the few keys the client needs out of a daemon ini file.
func readConfig(file string) (ConfigInfo, error) {
	f, err := os.Open(file)
	if err != nil {
		return ConfigInfo{}, fmt.Errorf("failed to read config %s: %w", file, err)
	}
	defer f.Close()

	info := ConfigInfo{Name: strings.TrimSuffix(filepath.Base(file), ".ini")}

	var section string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSpace(line[1 : len(line)-1])
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch {
		case section == "main" && key == "path":
			info.Path = value
		case section == "auth" && key == "account_id":
			info.AccountID = value
		}
	}
	if err := scanner.Err(); err != nil {
		return ConfigInfo{}, fmt.Errorf("failed to parse config %s: %w", file, err)
	}
	return info, nil
}
