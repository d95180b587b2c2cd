// Package classifier turns compiled symbol-table output into metric and trap
// candidates. The grammar-level compiler that produces the symbol table is an
// external collaborator; this package only consumes its JSON form.
package classifier

import (
	"encoding/json"
	"sort"

	"profilegen/internal/core/errors"
	"profilegen/internal/shared/observability"
)

// Node types emitted by SMI compilers for leaf symbols.
const (
	NodeScalar       = "scalar"
	NodeColumn       = "column"
	NodeNotification = "notification"
	NodeTrap         = "trap"
)

// Symbol is one named leaf entry of a management schema.
type Symbol struct {
	Name        string
	OID         string
	NodeType    string
	Description string
}

// ClassifiedSet buckets symbols into metrics (scalar/column) and traps
// (notification/trap), each ordered lexicographically by name.
type ClassifiedSet struct {
	Metrics []Symbol
	Traps   []Symbol
}

type rawSymbol struct {
	OID         string `json:"oid"`
	NodeType    string `json:"nodetype"`
	Description string `json:"description"`
}

// Extract classifies a compiled symbol table. A top level that is not a JSON
// object is an extraction failure; individual malformed entries are skipped.
func Extract(data []byte) (*ClassifiedSet, error) {
	var table map[string]json.RawMessage
	if err := json.Unmarshal(data, &table); err != nil {
		observability.ExtractionFailuresTotal.Inc()
		return nil, errors.Wrap(err, errors.CodeExtractionFailure, "symbol table is not a JSON object")
	}
	if table == nil {
		// "null" decodes into a nil map without error.
		observability.ExtractionFailuresTotal.Inc()
		return nil, errors.New(errors.CodeExtractionFailure, "symbol table is null")
	}

	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)

	set := &ClassifiedSet{}
	for _, name := range names {
		var raw rawSymbol
		if err := json.Unmarshal(table[name], &raw); err != nil {
			// Non-object entry (compiler metadata such as "imports"): skip.
			continue
		}
		if raw.OID == "" {
			// Abstract or non-leaf symbol without an address.
			continue
		}

		sym := Symbol{Name: name, OID: raw.OID, NodeType: raw.NodeType, Description: raw.Description}
		switch raw.NodeType {
		case NodeScalar, NodeColumn:
			set.Metrics = append(set.Metrics, sym)
		case NodeNotification, NodeTrap:
			set.Traps = append(set.Traps, sym)
		default:
			// Tables, rows and other structural nodes are not pollable.
		}
	}

	return set, nil
}

// Empty reports whether classification produced no usable candidates.
func (s *ClassifiedSet) Empty() bool {
	return s == nil || (len(s.Metrics) == 0 && len(s.Traps) == 0)
}
