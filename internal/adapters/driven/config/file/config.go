package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/imryche/litequery/internal/core/domain"
)

// Filename is the config file looked up in the working directory.
const Filename = "litequery.toml"

// EnvDatabasePath names the environment variable holding the database path.
const EnvDatabasePath = "DATABASE_PATH"

// Default directory names used by discovery.
const (
	QueriesDir    = "queries"
	MigrationsDir = "migrations"
)

// ErrDatabasePathNotSet is returned when no source names a database.
var ErrDatabasePathNotSet = errors.New("database path not set: pass --database, set database_path in " +
	Filename + " or set " + EnvDatabasePath)

// FileConfig is the content of litequery.toml. Relative paths are relative
// to the file's directory.
type FileConfig struct {
	DatabasePath   string `toml:"database_path,omitempty"`
	QueriesPath    string `toml:"queries_path,omitempty"`
	MigrationsPath string `toml:"migrations_path,omitempty"`
	Verbose        bool   `toml:"verbose,omitempty"`
	LogLevel       string `toml:"log_level,omitempty"`
}

// Load reads a config file. A missing file yields an empty config.
func Load(path string) (FileConfig, error) {
	var cfg FileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes a config file, refusing to overwrite an existing one.
func Save(path string, cfg FileConfig) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// DefaultDatabasePath is the database written by Init when none is given.
const DefaultDatabasePath = "database.db"

// Init writes a new config file naming databasePath and returns the file's
// absolute path. configPath defaults to Filename in workDir.
func Init(workDir, configPath, databasePath string) (string, error) {
	if configPath == "" {
		configPath = Filename
	}
	if databasePath == "" {
		databasePath = DefaultDatabasePath
	}
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting working directory: %w", err)
		}
		workDir = wd
	}
	path := absFrom(workDir, configPath)
	if err := Save(path, FileConfig{DatabasePath: databasePath}); err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("%s already exists", path)
		}
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// Options are the inputs of Resolve that do not come from the config file.
type Options struct {
	// DatabasePath is the --database flag value.
	DatabasePath string

	// ConfigPath overrides the config file location.
	ConfigPath string

	// WorkDir defaults to the process working directory.
	WorkDir string

	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// Settings is the resolved configuration.
type Settings struct {
	domain.Config

	// Verbose and LogLevel come from the config file only.
	Verbose  bool
	LogLevel string

	// ConfigFile is the config file consulted, whether or not it existed.
	ConfigFile string
}

// Resolve builds the configuration from flags, the config file and the
// environment, then creates any missing directories.
func Resolve(opts Options) (Settings, error) {
	workDir := opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Settings{}, fmt.Errorf("getting working directory: %w", err)
		}
		workDir = wd
	}
	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return Settings{}, err
	}
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = Filename
	}
	configPath = absFrom(workDir, configPath)
	fileCfg, err := Load(configPath)
	if err != nil {
		return Settings{}, err
	}
	configDir := filepath.Dir(configPath)

	var dbPath string
	switch {
	case opts.DatabasePath != "":
		dbPath = absFrom(workDir, opts.DatabasePath)
	case fileCfg.DatabasePath != "":
		dbPath = absFrom(configDir, fileCfg.DatabasePath)
	case getenv(EnvDatabasePath) != "":
		dbPath = absFrom(workDir, getenv(EnvDatabasePath))
	default:
		return Settings{}, ErrDatabasePathNotSet
	}

	rootDir := filepath.Dir(dbPath)
	cfg := domain.Config{
		DatabasePath:   dbPath,
		QueriesPath:    discover(fileCfg.QueriesPath, QueriesDir, configDir, rootDir, workDir),
		MigrationsPath: discover(fileCfg.MigrationsPath, MigrationsDir, configDir, rootDir, workDir),
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return Settings{}, err
	}

	return Settings{
		Config:     cfg,
		Verbose:    fileCfg.Verbose,
		LogLevel:   fileCfg.LogLevel,
		ConfigFile: configPath,
	}, nil
}

// discover returns the configured path, else the nearest directory called
// name between rootDir and stopDir, else rootDir/name.
func discover(configured, name, configDir, rootDir, stopDir string) string {
	if configured != "" {
		return absFrom(configDir, configured)
	}
	if found, ok := FindNearestDir(name, rootDir, stopDir); ok {
		return found
	}
	return filepath.Join(rootDir, name)
}

// FindNearestDir looks for a directory called name in start and its
// parents, stopping after stop or the file system root.
func FindNearestDir(name, start, stop string) (string, bool) {
	current := filepath.Clean(start)
	stop = filepath.Clean(stop)
	for {
		candidate := filepath.Join(current, name)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(current)
		if current == stop || parent == current {
			return "", false
		}
		current = parent
	}
}

func absFrom(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}
