package pipeline

import (
	"github.com/blagojts/viper"
	"github.com/timescale/tsbs-quick/internal/datagen"
)

// Setting keys, shared by flags, the settings file and the environment.
const (
	KeyWorkspace      = "workspace"
	KeySourceDir      = "source-dir"
	KeyBuildScript    = "build-script"
	KeyConfigTemplate = "config-template"
	KeyRefreshConfig  = "refresh-config"
	KeyProfileFile    = "profile-file"
)

// Settings is everything a run needs, decided once at startup.
type Settings struct {
	Workspace   string
	SourceDir   string
	BuildScript string

	// ConfigTemplate overrides the shipped load config template when set.
	ConfigTemplate string
	// RefreshConfig rewrites the persisted load config from the template.
	RefreshConfig bool
	ProfileFile   string

	Generate datagen.Params
}

// SettingsFromViper reads Settings from v, which is expected to have the
// command's flags bound.
func SettingsFromViper(v *viper.Viper) Settings {
	return Settings{
		Workspace:      v.GetString(KeyWorkspace),
		SourceDir:      v.GetString(KeySourceDir),
		BuildScript:    v.GetString(KeyBuildScript),
		ConfigTemplate: v.GetString(KeyConfigTemplate),
		RefreshConfig:  v.GetBool(KeyRefreshConfig),
		ProfileFile:    v.GetString(KeyProfileFile),
		Generate:       datagen.DefaultParams(),
	}
}
