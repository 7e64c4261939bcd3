package hub

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/arcadehub/gamehub/internal/protocol"
)

// pluginEntry is one loaded plugin: its descriptor plus the source file
// content a client downloads.
type pluginEntry struct {
	Name        string
	Version     string
	Description string
	Code        string
}

// pluginDescriptorFile is plugin.json's on-disk shape.
type pluginDescriptorFile struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Entry       string `json:"entry"`
}

// loadPlugins reads every subdirectory of dir as one plugin: a plugin.json
// descriptor plus the source file it names as entry. Missing dir is not an
// error (no plugins configured); a malformed subdirectory is logged and
// skipped rather than failing startup for the rest.
func loadPlugins(dir string) (map[string]pluginEntry, error) {
	plugins := make(map[string]pluginEntry)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return plugins, nil
		}
		return nil, fmt.Errorf("reading plugins dir: %w", err)
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		pluginDir := filepath.Join(dir, e.Name())
		descPath := filepath.Join(pluginDir, "plugin.json")

		raw, err := os.ReadFile(descPath)
		if err != nil {
			slog.Warn("skipping plugin without plugin.json", "plugin", e.Name(), "error", err)
			continue
		}
		var desc pluginDescriptorFile
		if err := json.Unmarshal(raw, &desc); err != nil {
			slog.Warn("skipping plugin with malformed plugin.json", "plugin", e.Name(), "error", err)
			continue
		}
		if desc.Name == "" || desc.Entry == "" {
			slog.Warn("skipping plugin descriptor missing name/entry", "plugin", e.Name())
			continue
		}

		code, err := os.ReadFile(filepath.Join(pluginDir, desc.Entry))
		if err != nil {
			slog.Warn("skipping plugin with unreadable entry file", "plugin", desc.Name, "error", err)
			continue
		}

		plugins[desc.Name] = pluginEntry{
			Name:        desc.Name,
			Version:     desc.Version,
			Description: desc.Description,
			Code:        string(code),
		}
	}
	return plugins, nil
}

// handlePluginList serves the plugin set loaded once at startup; the
// plugins directory is never rescanned at request time.
func (r *Reactor) handlePluginList(id connID) {
	var plugins []protocol.PluginDescriptor
	for _, p := range r.plugins {
		plugins = append(plugins, protocol.PluginDescriptor{
			Name:        p.Name,
			Version:     p.Version,
			Description: p.Description,
		})
	}
	r.sendTo(id, protocol.PluginListResp, protocol.PluginListRespPayload{Status: "ok", Plugins: plugins})
}

func (r *Reactor) handlePluginDownload(id connID, frame protocol.Frame) {
	var req protocol.PluginDownloadReqPayload
	if err := protocol.Decode(frame.Payload, &req); err != nil {
		r.sendTo(id, protocol.PluginDownloadResp, protocol.PluginDownloadRespPayload{Status: "error"})
		return
	}

	p, ok := r.plugins[req.Name]
	if !ok {
		r.sendTo(id, protocol.PluginDownloadResp, protocol.PluginDownloadRespPayload{Status: "error"})
		return
	}

	r.sendTo(id, protocol.PluginDownloadResp, protocol.PluginDownloadRespPayload{Status: "ok", Code: p.Code})
}
