package loadconfig

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"reflect"
	"strconv"

	"github.com/blagojts/viper"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/timescale/tsbs-quick/internal/utils"
	"gopkg.in/yaml.v2"
)

// ErrConfigLoadFailure means a document is malformed or does not fit the schema.
var ErrConfigLoadFailure = errors.New("invalid load config")

// requiredKeys must all be present, even when their value is the zero value.
var requiredKeys = []string{
	"data-source.file.location",
	"loader.db-specific.urls",
	"loader.db-specific.gzip",
	"loader.runner.batch-size",
	"loader.runner.workers",
}

var intStringType = reflect.TypeOf(IntString(""))

// Parse strictly decodes a YAML document: unknown keys, missing keys,
// mistyped values and unsupported schema versions are all errors. It does not
// check the values themselves; see BenchConfig.Validate.
func Parse(raw []byte) (*Document, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(raw)); err != nil {
		return nil, err
	}

	// viper folds key case, so key names are checked against the raw YAML.
	var keys Document
	if err := yaml.UnmarshalStrict(raw, &keys); err != nil {
		return nil, err
	}

	for _, key := range requiredKeys {
		if !v.IsSet(key) {
			return nil, fmt.Errorf("config file didn't have %s specified", key)
		}
	}

	var doc Document
	if err := v.UnmarshalExact(&doc, strictTypes); err != nil {
		return nil, err
	}

	switch doc.SchemaVersion {
	case 0:
		doc.SchemaVersion = SchemaVersion
	case SchemaVersion:
	default:
		return nil, fmt.Errorf("unsupported schema-version %d, want %d", doc.SchemaVersion, SchemaVersion)
	}
	return &doc, nil
}

// strictTypes turns off viper's weak typing. The only conversion left is a
// bare integer into an IntString; floats never become ints.
func strictTypes(c *mapstructure.DecoderConfig) {
	c.WeaklyTypedInput = false
	c.DecodeHook = func(from, to reflect.Type, data interface{}) (interface{}, error) {
		switch {
		case to == intStringType:
			switch n := data.(type) {
			case int:
				return strconv.Itoa(n), nil
			case int64:
				return strconv.FormatInt(n, 10), nil
			case uint64:
				return strconv.FormatUint(n, 10), nil
			}
		case to.Kind() == reflect.Int && (from.Kind() == reflect.Float32 || from.Kind() == reflect.Float64):
			return nil, fmt.Errorf("expected an integer, got %v", data)
		}
		return data, nil
	}
}

// Encode renders doc as YAML.
func Encode(doc *Document) ([]byte, error) {
	return yaml.Marshal(doc)
}

// Load reads the persisted document at path and returns its validated config.
func Load(path string) (BenchConfig, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return BenchConfig{}, utils.WithKind(ErrConfigLoadFailure, err)
	}
	doc, err := Parse(raw)
	if err != nil {
		return BenchConfig{}, utils.WithKind(ErrConfigLoadFailure, errors.Wrap(err, path))
	}
	c := doc.BenchConfig()
	if err := c.Validate(); err != nil {
		return BenchConfig{}, utils.WithKind(ErrConfigLoadFailure, errors.Wrap(err, path))
	}
	return c, nil
}

// Write replaces whatever is at path with c in the document shape.
func Write(path string, c BenchConfig) error {
	return utils.ReplaceFile(path, 0644, writeDocument(c))
}

func writeDocument(c BenchConfig) utils.WriterFunc {
	return func(w io.Writer) error {
		out, err := Encode(NewDocument(c))
		if err != nil {
			return errors.Wrap(err, "could not convert config to yaml")
		}
		_, err = w.Write(out)
		return err
	}
}

// ReadTemplate loads a template document from path; it must parse but its
// data-source.file.location may be empty.
func ReadTemplate(path string) ([]byte, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, utils.WithKind(ErrConfigLoadFailure, err)
	}
	if _, err := Parse(raw); err != nil {
		return nil, utils.WithKind(ErrConfigLoadFailure, errors.Wrapf(err, "template %s", path))
	}
	return raw, nil
}
