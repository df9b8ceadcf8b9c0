package filter

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	oierr "oifits/pkg/error"
)

// LoadSpec reads a filter spec from a YAML (.yaml, .yml) or TOML
// (.toml) file. Keys missing from the file keep their Default values;
// unknown keys are an error.
func LoadSpec(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, oierr.Wrap(err, oierr.CodeReadFailed, "LoadSpec", "filter")
	}

	spec := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = decodeYAML(data, &spec)
	case ".toml":
		err = decodeTOML(data, &spec)
	default:
		return Spec{}, oierr.Newf(oierr.ErrCategoryUsage, oierr.CodeBadSpec,
			"unsupported filter spec format %q", ext).WithOperation("LoadSpec", "filter")
	}
	if err != nil {
		return Spec{}, oierr.New(oierr.ErrCategoryUsage, oierr.CodeBadSpec, "cannot parse filter spec").
			WithDetail("%s: %v", path, err).WithOperation("LoadSpec", "filter")
	}

	if err := spec.Validate(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

func decodeYAML(data []byte, spec *Spec) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(spec); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func decodeTOML(data []byte, spec *Spec) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(spec)
}
