package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/darkit/slogmask/mask"
)

const sampleYAML = `
masking:
  mask: "*removed*"
  property_names:
    - password
    - secret
  ignored_namespaces:
    - github.com/acme/public
  exclude_static_properties: true
  max_depth: 4
  type_tag_key: "$type"
`

type account struct {
	Id       int
	Password string
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "slogmask.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Masking{
		Mask:                    "*removed*",
		PropertyNames:           []string{"password", "secret"},
		IgnoredNamespaces:       []string{"github.com/acme/public"},
		ExcludeStaticProperties: true,
		MaxDepth:                4,
		TypeTagKey:              "$type",
	}
	if !reflect.DeepEqual(cfg.Masking, want) {
		t.Errorf("Masking = %+v, want %+v", cfg.Masking, want)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "masking:\n  property_names: [token]\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Masking.Mask != mask.DefaultMask {
		t.Errorf("Mask = %q, want default", cfg.Masking.Mask)
	}
	if cfg.Masking.MaxDepth != 0 || cfg.Masking.ExcludeStaticProperties {
		t.Errorf("unexpected defaults: %+v", cfg.Masking)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("SLOGMASK_MASKING_MASK", "[hidden]")

	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Masking.Mask != "[hidden]" {
		t.Errorf("Mask = %q, want [hidden]", cfg.Masking.Mask)
	}
}

func TestFromViper(t *testing.T) {
	v := viper.New()
	v.Set("masking.property_names", []string{"apikey"})

	cfg, err := FromViper(v)
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.Masking.Options().PropertyNames; !reflect.DeepEqual(got, []string{"apikey"}) {
		t.Errorf("PropertyNames = %v", got)
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !mask.IsErrorType(err, mask.ErrorTypeConfiguration) {
		t.Errorf("missing file error = %v", err)
	}

	_, err = Load(writeConfig(t, "masking:\n  max_depth: -1\n"))
	if !errors.Is(err, errNegativeDepth) {
		t.Errorf("negative depth error = %v", err)
	}
}

func TestBuilderFromConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatal(err)
	}

	c, err := cfg.Masking.Builder().Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if c.MaxDepth() != 4 || c.TypeTagKey() != "$type" {
		t.Errorf("MaxDepth() = %d, TypeTagKey() = %q", c.MaxDepth(), c.TypeTagKey())
	}

	got := c.Convert(account{Id: 1, Password: "p"}).Plain()
	want := map[string]any{"Id": 1, "Password": "*removed*"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Convert() = %v, want %v", got, want)
	}

	if !strings.Contains(c.Render(account{}).String(), "$type=account") {
		t.Errorf("Render() = %v", c.Render(account{}))
	}
}
