package grc

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/catalog.yaml data/web_guidance.yaml
var dataFS embed.FS

// ErrInvalidCatalog is wrapped by every catalogue validation failure
var ErrInvalidCatalog = errors.New("invalid control catalogue")

var controlIDPattern = regexp.MustCompile(`^([A-Z]{2})-[0-9]+(\([0-9]+\))?$`)

// Catalog is the immutable control catalogue. It is safe for concurrent use;
// every accessor returns copies.
type Catalog struct {
	version      string
	families     map[string]string
	familyOrder  []string
	technologies map[string]Technology
	profiles     map[ProfileID]Profile
	profileOrder []ProfileID
	inclusion    map[ProfileID]map[ProfileID]bool
	controls     []Control
	byID         map[string]int
	webBaseline  map[string]bool
	guidance     WebGuidance
}

type catalogFile struct {
	Version      string                `yaml:"version"`
	Families     yaml.Node             `yaml:"families"`
	Technologies map[string]Technology `yaml:"technologies"`
	Profiles     []Profile             `yaml:"profiles"`
	WebBaseline  []string              `yaml:"web_baseline"`
	Controls     []Control             `yaml:"controls"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded catalogue, loading and validating it on first use
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = loadEmbedded()
	})
	return defaultCatalog, defaultErr
}

func loadEmbedded() (*Catalog, error) {
	data, err := dataFS.ReadFile("data/catalog.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded catalogue: %w", err)
	}
	guidance, err := dataFS.ReadFile("data/web_guidance.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded web guidance: %w", err)
	}
	return parse(data, guidance)
}

// LoadFile loads a catalogue from a YAML file on disk. The embedded web
// guidance checklist is used with it.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalogue %q: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads and validates a catalogue from r
func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue: %w", err)
	}
	guidance, err := dataFS.ReadFile("data/web_guidance.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded web guidance: %w", err)
	}
	return parse(data, guidance)
}

func parse(data, guidanceData []byte) (*Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: parse catalogue: %w", ErrInvalidCatalog, err)
	}

	guidance, err := parseGuidance(guidanceData)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		version:      file.Version,
		families:     make(map[string]string),
		technologies: make(map[string]Technology, len(file.Technologies)),
		profiles:     make(map[ProfileID]Profile, len(file.Profiles)),
		byID:         make(map[string]int, len(file.Controls)),
		webBaseline:  make(map[string]bool, len(file.WebBaseline)),
		guidance:     guidance,
	}

	var errs []error
	errs = append(errs, c.loadFamilies(&file.Families)...)
	for key, tech := range file.Technologies {
		tech.Key = key
		c.technologies[key] = tech
	}
	errs = append(errs, c.loadProfiles(file.Profiles)...)
	errs = append(errs, c.loadControls(file.Controls)...)
	for _, id := range file.WebBaseline {
		if _, ok := c.byID[id]; !ok {
			errs = append(errs, fmt.Errorf("web baseline references unknown control %q", id))
			continue
		}
		c.webBaseline[id] = true
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, errors.Join(errs...))
	}
	return c, nil
}

// loadFamilies keeps the family order declared in the dataset
func (c *Catalog) loadFamilies(node *yaml.Node) []error {
	if node.Kind != yaml.MappingNode {
		return []error{errors.New("families must be a mapping of code to name")}
	}
	var errs []error
	for i := 0; i+1 < len(node.Content); i += 2 {
		code, name := node.Content[i].Value, node.Content[i+1].Value
		if _, dup := c.families[code]; dup {
			errs = append(errs, fmt.Errorf("duplicate family %q", code))
			continue
		}
		c.families[code] = name
		c.familyOrder = append(c.familyOrder, code)
	}
	if len(c.families) == 0 {
		errs = append(errs, errors.New("no control families defined"))
	}
	return errs
}

func (c *Catalog) loadProfiles(profiles []Profile) []error {
	var errs []error
	for _, p := range profiles {
		if _, dup := c.profiles[p.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate profile %q", p.ID))
			continue
		}
		c.profiles[p.ID] = p
		c.profileOrder = append(c.profileOrder, p.ID)
	}
	for _, id := range []ProfileID{ProfileNone, ProfileCCCSLow, ProfilePBMM, ProfilePBMMHVA,
		ProfilePBHigh, ProfilePCBaseline, ProfileSecretMM, ProfileClassifiedHigh} {
		if _, ok := c.profiles[id]; !ok {
			errs = append(errs, fmt.Errorf("missing required profile %q", id))
		}
	}
	if len(errs) > 0 {
		return errs
	}

	c.inclusion = make(map[ProfileID]map[ProfileID]bool, len(c.profiles))
	for _, id := range c.profileOrder {
		set := make(map[ProfileID]bool)
		if err := c.expand(id, set, map[ProfileID]bool{}); err != nil {
			errs = append(errs, err)
			continue
		}
		c.inclusion[id] = set
	}
	return errs
}

// expand walks the nesting graph depth first, collecting every profile tag id subsumes
func (c *Catalog) expand(id ProfileID, set, visiting map[ProfileID]bool) error {
	if visiting[id] {
		return fmt.Errorf("profile nesting cycle at %q", id)
	}
	p, ok := c.profiles[id]
	if !ok {
		return fmt.Errorf("profile nesting references unknown profile %q", id)
	}
	visiting[id] = true
	defer delete(visiting, id)

	if id != ProfileNone {
		set[id] = true
	}
	for _, child := range p.Includes {
		if child == ProfileNone {
			return fmt.Errorf("profile %q cannot include %q", id, ProfileNone)
		}
		if err := c.expand(child, set, visiting); err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) loadControls(controls []Control) []error {
	var errs []error
	for _, ctrl := range controls {
		m := controlIDPattern.FindStringSubmatch(ctrl.ID)
		switch {
		case m == nil:
			errs = append(errs, fmt.Errorf("control %q: malformed id", ctrl.ID))
			continue
		case m[1] != ctrl.Family:
			errs = append(errs, fmt.Errorf("control %q: id prefix does not match family %q", ctrl.ID, ctrl.Family))
		}
		if _, dup := c.byID[ctrl.ID]; dup {
			errs = append(errs, fmt.Errorf("control %q: duplicate id", ctrl.ID))
			continue
		}
		if _, ok := c.families[ctrl.Family]; !ok {
			errs = append(errs, fmt.Errorf("control %q: unknown family %q", ctrl.ID, ctrl.Family))
		}
		if !ctrl.Priority.Valid() {
			errs = append(errs, fmt.Errorf("control %q: invalid priority %q", ctrl.ID, ctrl.Priority))
		}
		if len(ctrl.Profiles) == 0 {
			errs = append(errs, fmt.Errorf("control %q: no applicable profiles", ctrl.ID))
		}
		for _, p := range ctrl.Profiles {
			if p == ProfileNone {
				errs = append(errs, fmt.Errorf("control %q: cannot belong to profile %q", ctrl.ID, p))
			} else if _, ok := c.profiles[p]; !ok {
				errs = append(errs, fmt.Errorf("control %q: unknown profile %q", ctrl.ID, p))
			}
		}
		for _, key := range ctrl.Inheritance {
			if _, ok := c.technologies[key]; !ok {
				errs = append(errs, fmt.Errorf("control %q: unknown technology %q", ctrl.ID, key))
			}
		}
		c.byID[ctrl.ID] = len(c.controls)
		c.controls = append(c.controls, ctrl)
	}
	return errs
}

// Version returns the dataset version string
func (c *Catalog) Version() string {
	return c.version
}

// Size returns the number of controls in the catalogue
func (c *Catalog) Size() int {
	return len(c.controls)
}

// Control returns a specific control by ID
func (c *Catalog) Control(id string) (Control, bool) {
	i, ok := c.byID[strings.ToUpper(strings.TrimSpace(id))]
	if !ok {
		return Control{}, false
	}
	return c.controls[i].clone(), true
}

// Controls returns catalogue controls sorted by family then id, optionally
// filtered by family code and by profile (including nested profiles)
func (c *Catalog) Controls(family string, profile ProfileID) []Control {
	var include map[ProfileID]bool
	if profile != "" {
		include = c.inclusion[profile]
	}
	var controls []Control
	for _, ctrl := range c.controls {
		if family != "" && !strings.EqualFold(ctrl.Family, family) {
			continue
		}
		if profile != "" && !inSet(ctrl.Profiles, include) {
			continue
		}
		controls = append(controls, ctrl.clone())
	}
	sort.Slice(controls, func(i, j int) bool {
		return lessControl(controls[i].Family, controls[i].ID, controls[j].Family, controls[j].ID)
	})
	return controls
}

// ControlIDs returns all control IDs in catalogue order
func (c *Catalog) ControlIDs() []string {
	ids := make([]string, len(c.controls))
	for i, ctrl := range c.controls {
		ids[i] = ctrl.ID
	}
	return ids
}

// Families returns every family in dataset order
func (c *Catalog) Families() []Family {
	families := make([]Family, len(c.familyOrder))
	for i, code := range c.familyOrder {
		families[i] = Family{Code: code, Name: c.families[code]}
	}
	return families
}

// FamilyName returns the display name of a family code, or the code itself if unknown
func (c *Catalog) FamilyName(code string) string {
	if name, ok := c.families[code]; ok {
		return name
	}
	return code
}

// Profile returns a security profile by ID
func (c *Catalog) Profile(id ProfileID) (Profile, bool) {
	p, ok := c.profiles[id]
	if !ok {
		return Profile{}, false
	}
	p.Includes = slices.Clone(p.Includes)
	return p, true
}

// Profiles returns every profile in dataset order
func (c *Catalog) Profiles() []Profile {
	profiles := make([]Profile, 0, len(c.profileOrder))
	for _, id := range c.profileOrder {
		p, _ := c.Profile(id)
		profiles = append(profiles, p)
	}
	return profiles
}

// InclusionSet returns the profile tags subsumed by id, sorted. NONE and
// unknown profiles yield an empty set.
func (c *Catalog) InclusionSet(id ProfileID) []ProfileID {
	set := make([]ProfileID, 0, len(c.inclusion[id]))
	for p := range c.inclusion[id] {
		set = append(set, p)
	}
	slices.Sort(set)
	return set
}

// Technologies returns the technology table sorted by key
func (c *Catalog) Technologies() []Technology {
	techs := make([]Technology, 0, len(c.technologies))
	for _, t := range c.technologies {
		techs = append(techs, t)
	}
	sort.Slice(techs, func(i, j int) bool { return techs[i].Key < techs[j].Key })
	return techs
}

// TechnologyName returns the display name for a technology key, or the key
// verbatim when the catalogue does not know it
func (c *Catalog) TechnologyName(key string) string {
	if t, ok := c.technologies[key]; ok {
		return t.Name
	}
	return key
}

// WebBaseline returns the minimal web-security baseline control IDs, sorted
func (c *Catalog) WebBaseline() []string {
	ids := make([]string, 0, len(c.webBaseline))
	for id := range c.webBaseline {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return CompareControlID(ids[i], ids[j]) < 0 })
	return ids
}

func inSet(profiles []ProfileID, set map[ProfileID]bool) bool {
	for _, p := range profiles {
		if set[p] {
			return true
		}
	}
	return false
}
