package config

const (
	defaultConfigPath       = "~/.config/foldersort/config.toml"
	defaultStateDir         = "~/.local/share/foldersort"
	defaultLogDir           = "~/.local/share/foldersort/logs"
	defaultCategoriesFile   = "~/.config/foldersort/categories.json"
	defaultArchiveAfterDays = 30
	defaultArchiveFolder    = "Archive"
	defaultCollisionPolicy  = CollisionOverwrite
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
)

// Collision policies accepted by organize.collision_policy.
const (
	CollisionOverwrite = "overwrite"
	CollisionFail      = "fail"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir:       defaultStateDir,
			LogDir:         defaultLogDir,
			CategoriesFile: defaultCategoriesFile,
		},
		Organize: Organize{
			ArchiveAfterDays: defaultArchiveAfterDays,
			ArchiveFolder:    defaultArchiveFolder,
			CollisionPolicy:  defaultCollisionPolicy,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
