// Package config provides the config command, which prints the effective
// configuration after file, environment and default resolution.
package config

import (
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/agentstation/shotwatch/cmd/application"
	"github.com/agentstation/shotwatch/internal/autopress"
	"github.com/agentstation/shotwatch/internal/folders"
	"github.com/agentstation/shotwatch/internal/server"
	"github.com/agentstation/shotwatch/pkg/constants"
)

// Effective is the printed view of the configuration.
type Effective struct {
	Settings application.Settings `yaml:"application_settings"`
	Resolved Resolved             `yaml:"resolved"`
}

// Resolved holds values derived from the settings at startup.
type Resolved struct {
	Bind       string `yaml:"bind"`
	BindValid  bool   `yaml:"bind_valid"`
	Folder     string `yaml:"folder"`
	FolderErr  string `yaml:"folder_error,omitempty"`
	StreamPath string `yaml:"stream_path"`
	Autopress  string `yaml:"autopress"`
}

// NewCommand creates the config command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Long: `Print the configuration shotwatch would run with.

Values come from appsettings.json (section ` + constants.SettingsSection + `),
` + constants.EnvPrefix + `_* environment variables and built-in defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := yaml.Marshal(Build(app.Settings()))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

// Build resolves settings into the printed view.
func Build(s application.Settings) Effective {
	host, port, ok := server.ResolveBind(s.Host, s.Port)
	cfg := server.DefaultConfig()
	cfg.Host, cfg.Port = host, port

	r := Resolved{
		Bind:       cfg.Addr(),
		BindValid:  ok,
		StreamPath: cfg.StreamPath,
		Autopress:  autopressState(s),
	}
	if folder, err := folders.Resolve(s.WatchFolder); err != nil {
		r.FolderErr = err.Error()
	} else {
		r.Folder = folder
	}

	return Effective{Settings: s, Resolved: r}
}

func autopressState(s application.Settings) string {
	if !s.Autopress.Configured() {
		return "not configured"
	}
	if _, err := autopress.ParseSettings(s.Autopress); err != nil {
		return "invalid"
	}
	return "enabled"
}
