package model

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Catalog holds the definition names a map is allowed to reference. Items
// that point at names missing from a configured catalog are decoded but not
// kept. A nil *Catalog accepts every non-zero token.
type Catalog struct {
	RoadLooks    map[Token]struct{}
	PrefabModels map[Token]struct{}
	Cities       map[Token]struct{}
	Overlays     map[Token]struct{}
	FerryPorts   map[Token]struct{}
}

// catalogFile is the YAML layout of a catalog file
type catalogFile struct {
	RoadLooks    []string `yaml:"road_looks"`
	PrefabModels []string `yaml:"prefab_models"`
	Cities       []string `yaml:"cities"`
	Overlays     []string `yaml:"overlays"`
	FerryPorts   []string `yaml:"ferry_ports"`
}

// LoadCatalog reads a YAML catalog
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{}
	var err error
	if c.RoadLooks, err = tokenSet("road_looks", f.RoadLooks); err != nil {
		return nil, err
	}
	if c.PrefabModels, err = tokenSet("prefab_models", f.PrefabModels); err != nil {
		return nil, err
	}
	if c.Cities, err = tokenSet("cities", f.Cities); err != nil {
		return nil, err
	}
	if c.Overlays, err = tokenSet("overlays", f.Overlays); err != nil {
		return nil, err
	}
	if c.FerryPorts, err = tokenSet("ferry_ports", f.FerryPorts); err != nil {
		return nil, err
	}
	return c, nil
}

func tokenSet(section string, names []string) (map[Token]struct{}, error) {
	set := make(map[Token]struct{}, len(names))
	for _, name := range names {
		t, err := ParseToken(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", section, err)
		}
		set[t] = struct{}{}
	}
	return set, nil
}

func known(set map[Token]struct{}, t Token) bool {
	if t == 0 {
		return false
	}
	_, ok := set[t]
	return ok
}

// HasRoadLook reports whether t is a usable road look
func (c *Catalog) HasRoadLook(t Token) bool {
	if c == nil {
		return t != 0
	}
	return known(c.RoadLooks, t)
}

// HasPrefabModel reports whether t is a usable prefab model
func (c *Catalog) HasPrefabModel(t Token) bool {
	if c == nil {
		return t != 0
	}
	return known(c.PrefabModels, t)
}

// HasCity reports whether t is a usable city name
func (c *Catalog) HasCity(t Token) bool {
	if c == nil {
		return t != 0
	}
	return known(c.Cities, t)
}

// HasOverlay reports whether t is a usable overlay name
func (c *Catalog) HasOverlay(t Token) bool {
	if c == nil {
		return t != 0
	}
	return known(c.Overlays, t)
}

// HasFerryPort reports whether t is a usable ferry port
func (c *Catalog) HasFerryPort(t Token) bool {
	if c == nil {
		return t != 0
	}
	return known(c.FerryPorts, t)
}
