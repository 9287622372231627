package config

import (
	"context"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"gopkg.in/yaml.v3"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/errors"
)

// FormatOf derives the document format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return FormatCUE, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", errors.WrapWithContext(
			errors.New(errors.CodeInvalidInput, "unsupported configuration format"),
			errors.CodeConfigLoadFailed,
			"failed to load configuration",
			map[string]interface{}{
				"path": path,
			},
		)
	}
}

// Load reads, validates and builds the configuration at path.
//
// Parameters:
//   - ctx: Context for cancellation
//   - filesystem: Filesystem to read the configuration from
//   - path: Path to a .cue, .yaml or .yml document
//
// Returns the configuration, or a CONFIG_LOAD_FAILED, CONFIG_DECODE_FAILED
// or INVALID_CONFIGURATION error.
func Load(ctx context.Context, filesystem fs.Filesystem, path string) (*Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := filesystem.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithContext(
			err,
			errors.CodeConfigLoadFailed,
			"failed to read configuration",
			map[string]interface{}{
				"path": path,
			},
		)
	}

	doc, err := decode(ctx, data, format, path)
	if err != nil {
		return nil, err
	}
	return FromDocument(doc)
}

// Parse validates and builds a configuration held in memory.
func Parse(ctx context.Context, data []byte, format Format) (*Config, error) {
	doc, err := Decode(ctx, data, format)
	if err != nil {
		return nil, err
	}
	return FromDocument(doc)
}

// Default builds the embedded reference configuration.
func Default(ctx context.Context) (*Config, error) {
	return Parse(ctx, DefaultDocument, FormatCUE)
}

// Decode validates data against the schema and decodes it without building
// model types.
func Decode(ctx context.Context, data []byte, format Format) (*Document, error) {
	return decode(ctx, data, format, "config."+string(format))
}

func decode(ctx context.Context, data []byte, format Format, name string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeCanceled, "configuration loading canceled")
	}

	cueCtx := cuecontext.New()
	schema := cueCtx.CompileBytes(Schema, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "embedded schema does not compile")
	}
	registry := schema.LookupPath(cue.ParsePath("#Registry"))

	value, err := compile(cueCtx, data, format, name)
	if err != nil {
		return nil, errors.WrapWithContext(
			err,
			errors.CodeConfigLoadFailed,
			"failed to load configuration",
			map[string]interface{}{
				"path":   name,
				"format": string(format),
			},
		)
	}

	unified := registry.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, errors.WrapWithContext(
			err,
			errors.CodeConfigDecodeFailed,
			"configuration does not match the schema",
			map[string]interface{}{
				"path": name,
			},
		)
	}

	var doc Document
	if err := unified.Decode(&doc); err != nil {
		return nil, errors.WrapWithContext(
			err,
			errors.CodeConfigDecodeFailed,
			"failed to decode configuration",
			map[string]interface{}{
				"path": name,
			},
		)
	}
	return &doc, nil
}

func compile(cueCtx *cue.Context, data []byte, format Format, name string) (cue.Value, error) {
	switch format {
	case FormatCUE:
		v := cueCtx.CompileBytes(data, cue.Filename(name))
		return v, v.Err()
	case FormatYAML:
		var raw interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return cue.Value{}, err
		}
		if raw == nil {
			return cue.Value{}, errors.New(errors.CodeInvalidInput, "document is empty")
		}
		v := cueCtx.Encode(raw)
		return v, v.Err()
	default:
		return cue.Value{}, errors.Newf(errors.CodeInvalidInput, "unsupported format %q", format)
	}
}
