// Package assembler merges classified symbols and the selected reference into
// the output monitoring-profile document.
package assembler

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"profilegen/internal/engine/classifier"
	"profilegen/internal/shared/observability"
)

// SysObjectIDPlaceholder is the operator-filled device identifier field.
const SysObjectIDPlaceholder = "1.3.6.1.4.1.CHANGE_THIS"

type SymbolRef struct {
	OID  string `yaml:"OID"`
	Name string `yaml:"name"`
}

type MetricEntry struct {
	MIB    string    `yaml:"MIB"`
	Symbol SymbolRef `yaml:"symbol"`
}

type TrapEntry struct {
	MIB         string    `yaml:"MIB"`
	Symbol      SymbolRef `yaml:"symbol"`
	Description string    `yaml:"description,omitempty"`
}

// Document is the structural profile document. Field order fixes the YAML
// rendering, so identical input assembles to byte-identical output.
type Document struct {
	Metrics     []MetricEntry `yaml:"metrics"`
	Traps       []TrapEntry   `yaml:"traps"`
	SysObjectID string        `yaml:"sysobjectid"`
}

// Profile is the assembled result.
type Profile struct {
	MIBName          string
	ReferencePath    string
	Document         Document
	GeneratedContent string
}

// Request carries everything the deterministic merge needs. ReferenceContent
// is a structural exemplar only; nothing from it is copied into the output.
type Request struct {
	MIBName              string
	Set                  *classifier.ClassifiedSet
	ReferencePath        string
	ReferenceContent     string
	DescriptionOverrides map[string]string
}

// Assemble performs the deterministic structural merge: one metric entry per
// classified metric, one trap entry per classified trap. Trap descriptions
// default to the compiler-supplied text unless the caller overrides them.
func Assemble(req Request) Profile {
	doc := Document{
		Metrics:     make([]MetricEntry, 0, len(req.Set.Metrics)),
		Traps:       make([]TrapEntry, 0, len(req.Set.Traps)),
		SysObjectID: SysObjectIDPlaceholder,
	}

	for _, sym := range req.Set.Metrics {
		doc.Metrics = append(doc.Metrics, MetricEntry{
			MIB:    req.MIBName,
			Symbol: SymbolRef{OID: sym.OID, Name: sym.Name},
		})
	}

	for _, sym := range req.Set.Traps {
		description := sym.Description
		if override, ok := req.DescriptionOverrides[sym.Name]; ok {
			description = override
		}
		doc.Traps = append(doc.Traps, TrapEntry{
			MIB:         req.MIBName,
			Symbol:      SymbolRef{OID: sym.OID, Name: sym.Name},
			Description: description,
		})
	}

	observability.ProfilesAssembledTotal.Inc()

	return Profile{
		MIBName:       req.MIBName,
		ReferencePath: req.ReferencePath,
		Document:      doc,
	}
}

// Encode renders the profile as YAML. Generated content, when present, is
// appended verbatim after the structural document; it is opaque pass-through
// text and is never parsed or validated here.
func (p *Profile) Encode() ([]byte, error) {
	out, err := yaml.Marshal(p.Document)
	if err != nil {
		return nil, fmt.Errorf("encode profile for %s: %w", p.MIBName, err)
	}
	if p.GeneratedContent != "" {
		out = append(out, '\n')
		out = append(out, []byte(p.GeneratedContent)...)
	}
	return out, nil
}
