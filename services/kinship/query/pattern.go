// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package query compiles declarative graph patterns into traversal calls.
//
// A pattern names a set of start nodes (label plus property filter), an
// ordered chain of relationship hops, and an optional filter on the
// terminal nodes. Execution expands the hops breadth first through the
// traversal engine and returns tabular rows of bound variables.
//
// Patterns can be built programmatically or parsed from a compact text
// form:
//
//	MATCH (Person {name: "Bob"}) -[FRIEND]-> -[FRIEND]-> (Person)
//
// Arrow forms select the hop direction: -[T]-> outgoing, <-[T]- incoming,
// -[T]- both.
package query

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/kinship/services/kinship/graph"
)

// ErrMalformedPattern is returned when a pattern fails parsing or
// validation. Errors wrap it, so errors.Is works through all detail.
var ErrMalformedPattern = errors.New("malformed pattern")

// validate is the shared validator instance for pattern structs.
var validate = validator.New()

// Filter selects nodes by label and property containment.
type Filter struct {
	// Label is the required node label.
	Label string `validate:"required"`

	// Props must all be present on a matching node. May be empty.
	Props map[string]string
}

// Hop is one step of the relationship chain.
type Hop struct {
	// Type is the relationship type to follow.
	Type string `validate:"required"`

	// Direction selects the edge orientation for this hop.
	Direction graph.Direction
}

// Pattern is a declarative description of a multi-hop match.
type Pattern struct {
	// Start filters the nodes the expansion begins from.
	Start Filter `validate:"required"`

	// Hops is the ordered relationship chain, at least one hop.
	Hops []Hop `validate:"min=1,dive"`

	// Where optionally filters the terminal nodes. Nil accepts all.
	Where *Filter
}

// Validate checks the pattern for structural and semantic problems.
//
// Outputs:
//
//	error - Nil, or an error wrapping ErrMalformedPattern.
func (p *Pattern) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPattern, err)
	}
	if len(p.Hops) > graph.MaxTraversalDepth {
		return fmt.Errorf("%w: %d hops exceeds maximum depth %d",
			ErrMalformedPattern, len(p.Hops), graph.MaxTraversalDepth)
	}
	for i, hop := range p.Hops {
		if !hop.Direction.Valid() {
			return fmt.Errorf("%w: hop %d has invalid direction", ErrMalformedPattern, i)
		}
	}
	return nil
}
