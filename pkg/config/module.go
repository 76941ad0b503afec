package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
	"cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaFile string

//go:embed default.yaml
var DEFAULT []byte

func buildYAML(ctx *cue.Context, filename string, data []byte) (cue.Value, error) {
	file, err := yaml.Extract(filename, data)
	if err != nil {
		return cue.Value{}, err
	}
	value := ctx.BuildFile(file)
	return value, value.Err()
}

// loadValue reads one config file into a cue value. The format is picked
// by extension; anything but yaml or json is rejected.
func loadValue(ctx *cue.Context, path string) (cue.Value, error) {
	if _, err := os.Stat(path); err != nil {
		return cue.Value{}, fmt.Errorf("does not exist")
	}

	switch filepath.Ext(path) {
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return cue.Value{}, err
		}
		expr, err := cuejson.Extract(path, data)
		if err != nil {
			return cue.Value{}, err
		}
		value := ctx.BuildExpr(expr)
		return value, value.Err()
	case ".yaml":
		data, err := os.ReadFile(path)
		if err != nil {
			return cue.Value{}, err
		}
		return buildYAML(ctx, path, data)
	}

	return cue.Value{}, fmt.Errorf("not in a valid format")
}

// Process unifies the given config files, in order, with the embedded
// schema and decodes the result. With no files, the embedded defaults
// apply instead.
func Process(configPaths []string) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaFile)
	if err := schema.Err(); err != nil {
		return nil, err
	}

	if len(configPaths) == 0 {
		value, err := buildYAML(ctx, "<default>", DEFAULT)
		if err != nil {
			return nil, err
		}
		schema = schema.Unify(value)
		if err := schema.Err(); err != nil {
			return nil, fmt.Errorf("invalid default config file: %v", err)
		}
	}

	for _, path := range configPaths {
		value, err := loadValue(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("could not process config file %s: %v", path, err)
		}

		schema = schema.Unify(value)
		if err := schema.Err(); err != nil {
			return nil, fmt.Errorf("could not merge config file %s: %v", path, err)
		}
		if err := schema.Validate(); err != nil {
			return nil, fmt.Errorf("config file %s is not valid: %v", path, err)
		}
	}

	if err := schema.Validate(); err != nil {
		return nil, err
	}

	data, err := schema.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("could not aggregate config: %v", err)
	}

	config := Config{}
	err = json.Unmarshal(data, &config)
	return &config, err
}
