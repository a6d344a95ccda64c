package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	InputConfig struct {
		Tournaments string `yaml:"tournaments" sanitize:"path_clean" validate:"required,filepath"`
		PlayerStats string `yaml:"player_stats" sanitize:"path_clean" validate:"required,filepath"`
		TeamStats   string `yaml:"team_stats" sanitize:"path_clean" validate:"required,filepath"`
		// IANA name of input character set, empty means UTF-8
		Encoding string `yaml:"encoding,omitempty"`
	}

	StylesConfig struct {
		Player string `yaml:"player" sanitize:"path_clean" validate:"required,filepath"`
		Team   string `yaml:"team" sanitize:"path_clean" validate:"required,filepath"`
	}

	OutputConfig struct {
		PlayerDir             string `yaml:"player_dir" sanitize:"path_clean" validate:"required"`
		TeamDir               string `yaml:"team_dir" sanitize:"path_clean" validate:"required"`
		TeamNameTemplate      string `yaml:"team_name_template" validate:"required"`
		PlayerNameTemplate    string `yaml:"player_name_template" validate:"required"`
		FileNameTransliterate bool   `yaml:"file_name_transliterate"`
	}

	PaletteConfig struct {
		High     float64 `yaml:"high" validate:"gtfield=Low"`
		Low      float64 `yaml:"low"`
		Positive string  `yaml:"positive" validate:"required"`
		Negative string  `yaml:"negative" validate:"required"`
		Neutral  string  `yaml:"neutral" validate:"required"`
	}

	LogoConfig struct {
		Path   string `yaml:"path,omitempty" validate:"omitempty,filepath"`
		Height int    `yaml:"height" validate:"min=8,max=1024"`
	}

	RenderConfig struct {
		DPI       float64       `yaml:"dpi" validate:"min=36,max=1200"`
		PageSize  int           `yaml:"page_size" validate:"min=1"`
		Pages     int           `yaml:"pages" validate:"min=1"`
		Precision int           `yaml:"precision" validate:"min=0,max=10"`
		FontSize  float64       `yaml:"font_size" validate:"gt=0"`
		Margin    float64       `yaml:"margin" validate:"gte=0"`
		Palette   PaletteConfig `yaml:"palette"`
		Logo      LogoConfig    `yaml:"logo"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Input     InputConfig    `yaml:"input"`
		Styles    StylesConfig   `yaml:"styles"`
		Output    OutputConfig   `yaml:"output"`
		Render    RenderConfig   `yaml:"render"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above
	TeamNameTemplateFieldName   TemplateFieldName = "team_name_template"
	PlayerNameTemplateFieldName TemplateFieldName = "player_name_template"

	DefaultTeamNameTemplate   = "{{ .ID }}_team_stats"
	DefaultPlayerNameTemplate = "{{ .ID }}_{{ .Page }}_player_stats"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(TeamNameTemplateFieldName)),
	gencfg.WithDoNotExpandField(string(PlayerNameTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// only fields we defined are allowed
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration expands embedded template to get defaults, overlays
// values from the file at path (if any) and validates the result.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare returns expanded default configuration.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
