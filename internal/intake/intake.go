// Package intake reads a project intake form from YAML or JSON and turns it
// into the categorization the decision engine works on.
package intake

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ethanolivertroy/saa-tui/internal/grc"
)

// ErrInvalidIntake wraps every validation failure
var ErrInvalidIntake = errors.New("invalid intake")

// Intake is the project owner's questionnaire. YAML and JSON share the same
// snake_case keys.
type Intake struct {
	ProjectName        string   `yaml:"project_name" json:"project_name"`
	Department         string   `yaml:"department" json:"department,omitempty"`
	Branch             string   `yaml:"branch" json:"branch,omitempty"`
	Owner              string   `yaml:"owner" json:"owner,omitempty"`
	Description        string   `yaml:"description" json:"description,omitempty"`
	Notes              string   `yaml:"notes" json:"notes,omitempty"`
	Confidentiality    string   `yaml:"confidentiality" json:"confidentiality"`
	Integrity          string   `yaml:"integrity" json:"integrity"`
	Availability       string   `yaml:"availability" json:"availability"`
	AppType            string   `yaml:"app_type" json:"app_type,omitempty"`
	PIITypes           []string `yaml:"pii_types" json:"pii_types,omitempty"`
	HighValueAsset     bool     `yaml:"high_value_asset" json:"high_value_asset,omitempty"`
	Technologies       []string `yaml:"technologies" json:"technologies,omitempty"`
	HasAPIs            string   `yaml:"has_apis" json:"has_apis,omitempty"`                       // exposes|consumes|both|no
	GCInterconnections string   `yaml:"gc_interconnections" json:"gc_interconnections,omitempty"` // yes|no|planned
	MobileAccess       string   `yaml:"mobile_access" json:"mobile_access,omitempty"`             // yes|no|planned
	ExternalUsers      string   `yaml:"external_users" json:"external_users,omitempty"`           // yes|no|contractors
}

var (
	apiValues   = []string{"", "no", "exposes", "consumes", "both"}
	yesNoValues = []string{"", "no", "yes", "planned"}
	userValues  = []string{"", "no", "yes", "contractors"}
	appTypes    = []string{"", string(grc.AppInternal), string(grc.AppExternal), string(grc.AppHybrid)}
)

// Load reads and validates an intake file
func Load(path string) (*Intake, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open intake: %w", err)
	}
	defer func() { _ = f.Close() }()
	in, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return in, nil
}

// Parse decodes and validates an intake document. Unknown keys are rejected.
func Parse(r io.Reader) (*Intake, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read intake: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidIntake)
	}

	var in Intake
	if trimmed := bytes.TrimSpace(data); trimmed[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.DisallowUnknownFields()
		err = dec.Decode(&in)
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&in)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidIntake, err)
	}
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return &in, nil
}

func (in *Intake) normalize() {
	in.ProjectName = strings.TrimSpace(in.ProjectName)
	in.Confidentiality = string(grc.ParseConfidentiality(in.Confidentiality))
	in.Integrity = string(grc.ParseLevel(in.Integrity))
	in.Availability = string(grc.ParseLevel(in.Availability))
	for _, p := range []*string{&in.AppType, &in.HasAPIs, &in.GCInterconnections, &in.MobileAccess, &in.ExternalUsers} {
		*p = strings.ToLower(strings.TrimSpace(*p))
	}
	techs := in.Technologies[:0]
	for _, t := range in.Technologies {
		if t = strings.TrimSpace(t); t != "" {
			techs = append(techs, t)
		}
	}
	in.Technologies = techs
}

// Validate reports every problem with the intake at once
func (in *Intake) Validate() error {
	var errs []error
	if in.ProjectName == "" {
		errs = append(errs, errors.New("project_name is required"))
	}
	if in.Confidentiality != "" && !grc.Confidentiality(in.Confidentiality).Valid() {
		errs = append(errs, fmt.Errorf("unknown confidentiality %q", in.Confidentiality))
	}
	if in.Integrity != "" && !grc.Level(in.Integrity).Valid() {
		errs = append(errs, fmt.Errorf("unknown integrity level %q", in.Integrity))
	}
	if in.Availability != "" && !grc.Level(in.Availability).Valid() {
		errs = append(errs, fmt.Errorf("unknown availability level %q", in.Availability))
	}
	check := func(field, value string, allowed []string) {
		if !slices.Contains(allowed, value) {
			errs = append(errs, fmt.Errorf("%s must be one of %s, got %q", field, strings.Join(allowed[1:], "|"), value))
		}
	}
	check("app_type", in.AppType, appTypes)
	check("has_apis", in.HasAPIs, apiValues)
	check("gc_interconnections", in.GCInterconnections, yesNoValues)
	check("mobile_access", in.MobileAccess, yesNoValues)
	check("external_users", in.ExternalUsers, userValues)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidIntake, errors.Join(errs...))
	}
	return nil
}

// HasPII reports whether any personal information type other than "none" is declared
func (in *Intake) HasPII() bool {
	for _, p := range in.PIITypes {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" && p != "none" {
			return true
		}
	}
	return false
}

// Categorization maps the questionnaire onto decision-engine inputs. Structured
// answers about APIs, interconnections and mobile access are appended to the
// description so the keyword heuristics see them.
func (in *Intake) Categorization() grc.Categorization {
	c := grc.Categorization{
		Confidentiality:  grc.Confidentiality(in.Confidentiality),
		Integrity:        grc.Level(in.Integrity),
		Availability:     grc.Level(in.Availability),
		HasPII:           in.HasPII(),
		IsHighValueAsset: in.HighValueAsset,
		AppType:          grc.AppType(in.AppType),
		Technologies:     slices.Clone(in.Technologies),
	}

	parts := []string{}
	for _, s := range []string{in.Description, in.Notes} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	if active(in.HasAPIs) {
		parts = append(parts, "API integration ("+in.HasAPIs+").")
		c.HasApplicationComplexity = true
	}
	if active(in.GCInterconnections) {
		parts = append(parts, "Interconnect with other GC systems ("+in.GCInterconnections+").")
		c.HasApplicationComplexity = true
	}
	if active(in.MobileAccess) {
		parts = append(parts, "Mobile access ("+in.MobileAccess+").")
	}
	if active(in.ExternalUsers) && c.AppType == "" {
		c.AppType = grc.AppExternal
	}
	c.Description = strings.Join(parts, " ")
	return c
}

func active(answer string) bool {
	return answer != "" && answer != "no"
}
