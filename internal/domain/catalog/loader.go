package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed plan.yaml
var defaultPlan []byte

// plan mirrors the YAML document layout.
type plan struct {
	Years []Year `yaml:"years"`
}

// Load parses a YAML plan and validates it into a Catalog.
func Load(r io.Reader, opts ...Option) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var p plan
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadPlan, err)
	}
	return New(p.Years, opts...)
}

// LoadFile reads a YAML plan from path.
func LoadFile(path string, opts ...Option) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadPlan, err)
	}
	defer func() { _ = f.Close() }()
	return Load(f, opts...)
}

var loadDefault = sync.OnceValues(func() (*Catalog, error) {
	return Load(bytes.NewReader(defaultPlan), WithOpenPrerequisites(IntegrationWorkshop, CapstoneThesis))
})

// Default returns the embedded plan of studies.
func Default() (*Catalog, error) {
	return loadDefault()
}

// Codes of the two courses whose eligibility is ruled separately.
const (
	IntegrationWorkshop = "340321"
	CapstoneThesis      = "340533"
)
