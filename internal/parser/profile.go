package parser

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/elyasalemi10/bwa-catalog/internal/common"
)

// profileSchema constrains vendor profile documents. Validation runs before
// decoding so a typoed key fails loudly instead of silently falling back to
// a default.
const profileSchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "code_pattern":          {"type": "string", "minLength": 1},
    "adjacency_window":      {"type": "integer", "minimum": 1, "maximum": 50},
    "min_description_words": {"type": "integer", "minimum": 1, "maximum": 50},
    "currency_symbols":      {"type": "string", "minLength": 1}
  }
}`

var compiledProfileSchema = jsonschema.MustCompileString("vendor_profile.schema.json", profileSchema)

// ParseProfile validates and decodes one vendor profile document.
func ParseProfile(data []byte) (Config, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return Config{}, common.NewAppError("PROFILE_DECODE", "vendor profile is not valid JSON", common.ErrInvalidInput)
	}
	if err := compiledProfileSchema.Validate(v); err != nil {
		return Config{}, common.NewAppError("PROFILE_SCHEMA", err.Error(), common.ErrInvalidInput)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, common.NewAppError("PROFILE_DECODE", "vendor profile decode failed", common.ErrInvalidInput)
	}
	return cfg.withDefaults(), nil
}

// LoadProfiles reads every *.json profile in dir, keyed by file basename.
// Invalid profiles are skipped with a warning so one bad vendor file does
// not take down startup.
func LoadProfiles(dir string, logger *slog.Logger) (map[string]Config, error) {
	if logger == nil {
		logger = slog.Default()
	}
	profiles := make(map[string]Config)
	if dir == "" {
		return profiles, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, common.WrapError(err, "read vendor profile dir")
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			logger.Warn("vendor profile unreadable", "file", e.Name(), "error", err)
			continue
		}
		cfg, err := ParseProfile(data)
		if err != nil {
			logger.Warn("vendor profile invalid", "file", e.Name(), "error", err)
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".json")
		profiles[name] = cfg
		logger.Info("vendor profile loaded", "profile", name)
	}
	return profiles, nil
}
