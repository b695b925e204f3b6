package driver

import (
	"os"

	"github.com/pelletier/go-toml"
	"tlog.app/go/errors"
)

// ConfigFileName is the per-project configuration file the CLI looks
// for next to the sources.
const ConfigFileName = "toyc.toml"

// Config controls which pipeline stages run. It deserializes from a
// TOML file:
//
//	optimize = true
//	emit-assembly = true
//
//	[output]
//	tac = true
//	stats = false
type Config struct {
	Optimize     bool `toml:"optimize"`
	EmitAssembly bool `toml:"emit-assembly"`

	Output OutputConfig `toml:"output"`
}

// OutputConfig selects what the CLI prints beyond the final stage.
type OutputConfig struct {
	Tokens bool `toml:"tokens"`
	AST    bool `toml:"ast"`
	TAC    bool `toml:"tac"`
	Stats  bool `toml:"stats"`
}

// DefaultConfig returns the full pipeline: optimize and emit assembly.
func DefaultConfig() Config {
	return Config{
		Optimize:     true,
		EmitAssembly: true,
		Output:       OutputConfig{Stats: true},
	}
}

// LoadConfig reads a TOML config file. Keys not present keep their
// DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	buff, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(buff, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse config")
	}

	return cfg, nil
}

// LoadConfigIfPresent loads ConfigFileName from the given directory,
// falling back to defaults when the file does not exist.
func LoadConfigIfPresent(dir string) (Config, error) {
	path := dir + string(os.PathSeparator) + ConfigFileName
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}
