package config

const (
	defaultAppDir        = "~/.local/share/obdexporter"
	defaultDatFile       = "Tibia.dat"
	defaultSprFile       = "Tibia.spr"
	defaultFormatVersion = 1
	defaultPacingMillis  = 10
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"

	clientDirName    = "Client"
	outputDirName    = "Output"
	stateDirName     = "state"
	logDirName       = "logs"
	versionsFileName = "versions.xml"
	historyFileName  = "history.db"
	lockFileName     = "obdexporter.lock"
)

// AppDirEnv overrides the default application directory when paths.app_dir
// is not set in the config file.
const AppDirEnv = "OBDEXPORTER_HOME"

// Default returns a Config populated with repository defaults. Derived paths
// are left empty and filled in during normalization.
func Default() Config {
	return Config{
		Paths: Paths{
			AppDir: defaultAppDir,
		},
		Client: Client{
			DatFile: defaultDatFile,
			SprFile: defaultSprFile,
		},
		Export: Export{
			FormatVersion: defaultFormatVersion,
			PacingMillis:  defaultPacingMillis,
			RecordHistory: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
