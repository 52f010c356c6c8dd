// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

// mustCreate adds a node or fails the test.
func mustCreate(t *testing.T, g *Graph, label string, props map[string]string) string {
	t.Helper()
	id, err := g.CreateNode(label, props)
	if err != nil {
		t.Fatalf("CreateNode(%q) failed: %v", label, err)
	}
	return id
}

// mustEdge adds an edge or fails the test.
func mustEdge(t *testing.T, g *Graph, src, dst, typ string) {
	t.Helper()
	if err := g.AddEdge(src, dst, typ, nil); err != nil {
		t.Fatalf("AddEdge(%s->%s %s) failed: %v", src, dst, typ, err)
	}
}

func TestCreateNode(t *testing.T) {
	t.Run("assigns distinct IDs", func(t *testing.T) {
		g := New()
		a := mustCreate(t, g, "Person", map[string]string{"name": "Alice"})
		b := mustCreate(t, g, "Person", map[string]string{"name": "Alice"})

		if a == b {
			t.Errorf("CreateNode returned the same ID twice: %s", a)
		}
		if g.NodeCount() != 2 {
			t.Errorf("NodeCount = %d, expected 2", g.NodeCount())
		}
	})

	t.Run("empty label rejected", func(t *testing.T) {
		g := New()
		if _, err := g.CreateNode("", nil); !errors.Is(err, ErrInvalidLabel) {
			t.Errorf("error = %v, expected ErrInvalidLabel", err)
		}
	})

	t.Run("max nodes enforced", func(t *testing.T) {
		g := New(WithMaxNodes(1))
		mustCreate(t, g, "Person", nil)
		if _, err := g.CreateNode("Person", nil); !errors.Is(err, ErrMaxNodesExceeded) {
			t.Errorf("error = %v, expected ErrMaxNodesExceeded", err)
		}
	})

	t.Run("properties copied", func(t *testing.T) {
		g := New()
		props := map[string]string{"name": "Alice"}
		id := mustCreate(t, g, "Person", props)
		props["name"] = "Mallory"

		n, err := g.GetNode(id)
		if err != nil {
			t.Fatalf("GetNode failed: %v", err)
		}
		if n.Properties["name"] != "Alice" {
			t.Errorf("stored name = %q, expected Alice (caller mutation leaked in)", n.Properties["name"])
		}
	})
}

func TestMergeNode(t *testing.T) {
	t.Run("idempotent on label and key property", func(t *testing.T) {
		g := New()
		id1, created1, err := g.MergeNode("Person", "name", map[string]string{"name": "Bob"})
		if err != nil {
			t.Fatalf("first merge failed: %v", err)
		}
		id2, created2, err := g.MergeNode("Person", "name", map[string]string{"name": "Bob"})
		if err != nil {
			t.Fatalf("second merge failed: %v", err)
		}

		if !created1 || created2 {
			t.Errorf("created flags = %v, %v; expected true, false", created1, created2)
		}
		if id1 != id2 {
			t.Errorf("merge minted two IDs: %s, %s", id1, id2)
		}
		if g.NodeCount() != 1 {
			t.Errorf("NodeCount = %d, expected exactly one node", g.NodeCount())
		}
	})

	t.Run("merges properties into existing node", func(t *testing.T) {
		g := New()
		id, _, _ := g.MergeNode("Person", "name", map[string]string{"name": "Bob"})
		_, _, err := g.MergeNode("Person", "name", map[string]string{"name": "Bob", "city": "Oslo"})
		if err != nil {
			t.Fatalf("merge failed: %v", err)
		}

		n, _ := g.GetNode(id)
		if n.Properties["city"] != "Oslo" {
			t.Errorf("city = %q, expected Oslo", n.Properties["city"])
		}
	})

	t.Run("different key values create distinct nodes", func(t *testing.T) {
		g := New()
		id1, _, _ := g.MergeNode("Person", "name", map[string]string{"name": "Bob"})
		id2, _, _ := g.MergeNode("Person", "name", map[string]string{"name": "Carol"})
		if id1 == id2 {
			t.Errorf("distinct identities merged into one node")
		}
	})

	t.Run("same key different label stays distinct", func(t *testing.T) {
		g := New()
		id1, _, _ := g.MergeNode("Person", "name", map[string]string{"name": "Bob"})
		id2, _, _ := g.MergeNode("Bot", "name", map[string]string{"name": "Bob"})
		if id1 == id2 {
			t.Errorf("labels should partition merge identity")
		}
	})

	t.Run("matches node made by CreateNode", func(t *testing.T) {
		g := New()
		id1, err := g.CreateNode("Person", map[string]string{"name": "Bob"})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		id2, created, err := g.MergeNode("Person", "name", map[string]string{"name": "Bob", "city": "Oslo"})
		if err != nil {
			t.Fatalf("merge failed: %v", err)
		}

		if created {
			t.Errorf("created = true, expected merge into existing node")
		}
		if id1 != id2 {
			t.Errorf("merge minted a duplicate: %s vs %s", id1, id2)
		}
		if g.NodeCount() != 1 {
			t.Errorf("NodeCount = %d, expected 1", g.NodeCount())
		}
		n, _ := g.GetNode(id1)
		if n.Properties["city"] != "Oslo" {
			t.Errorf("city = %q, expected Oslo", n.Properties["city"])
		}
	})

	t.Run("matches node made by PutNode", func(t *testing.T) {
		g := New()
		if err := g.PutNode("bob", "Person", map[string]string{"name": "Bob"}); err != nil {
			t.Fatalf("put failed: %v", err)
		}
		id, created, err := g.MergeNode("Person", "name", map[string]string{"name": "Bob"})
		if err != nil {
			t.Fatalf("merge failed: %v", err)
		}

		if created || id != "bob" {
			t.Errorf("merge = (%s, %v), expected (bob, false)", id, created)
		}
		if g.NodeCount() != 1 {
			t.Errorf("NodeCount = %d, expected 1", g.NodeCount())
		}
	})

	t.Run("missing key property rejected", func(t *testing.T) {
		g := New()
		_, _, err := g.MergeNode("Person", "name", map[string]string{"city": "Oslo"})
		if !errors.Is(err, ErrMissingKeyProperty) {
			t.Errorf("error = %v, expected ErrMissingKeyProperty", err)
		}
	})
}

func TestPutNode(t *testing.T) {
	g := New()
	if err := g.PutNode("bob", "Person", map[string]string{"name": "Bob"}); err != nil {
		t.Fatalf("PutNode failed: %v", err)
	}
	if err := g.PutNode("bob", "Person", nil); !errors.Is(err, ErrDuplicateNode) {
		t.Errorf("error = %v, expected ErrDuplicateNode", err)
	}
	if err := g.PutNode("", "Person", nil); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("error = %v, expected ErrInvalidNodeID", err)
	}
}

func TestAddEdge(t *testing.T) {
	t.Run("missing endpoints rejected", func(t *testing.T) {
		g := New()
		a := mustCreate(t, g, "Person", nil)

		if err := g.AddEdge(a, "ghost", "FRIEND", nil); !errors.Is(err, ErrNotFound) {
			t.Errorf("missing target: error = %v, expected ErrNotFound", err)
		}
		if err := g.AddEdge("ghost", a, "FRIEND", nil); !errors.Is(err, ErrNotFound) {
			t.Errorf("missing source: error = %v, expected ErrNotFound", err)
		}
		if g.EdgeCount() != 0 {
			t.Errorf("EdgeCount = %d, expected 0 (no dangling edges)", g.EdgeCount())
		}
	})

	t.Run("duplicate type merges properties", func(t *testing.T) {
		g := New()
		a := mustCreate(t, g, "Person", nil)
		b := mustCreate(t, g, "Person", nil)

		if err := g.AddEdge(a, b, "FRIEND", map[string]string{"since": "2019"}); err != nil {
			t.Fatalf("AddEdge failed: %v", err)
		}
		if err := g.AddEdge(a, b, "FRIEND", map[string]string{"weight": "5"}); err != nil {
			t.Fatalf("duplicate AddEdge failed: %v", err)
		}

		if g.EdgeCount() != 1 {
			t.Fatalf("EdgeCount = %d, expected 1", g.EdgeCount())
		}
		e := g.Edges()[0]
		if e.Properties["since"] != "2019" || e.Properties["weight"] != "5" {
			t.Errorf("edge properties = %v, expected merged since+weight", e.Properties)
		}
	})

	t.Run("same pair different types allowed", func(t *testing.T) {
		g := New()
		a := mustCreate(t, g, "Person", nil)
		b := mustCreate(t, g, "Person", nil)
		mustEdge(t, g, a, b, "FRIEND")
		mustEdge(t, g, a, b, "FOLLOWS")

		if g.EdgeCount() != 2 {
			t.Errorf("EdgeCount = %d, expected 2", g.EdgeCount())
		}
	})

	t.Run("empty type rejected", func(t *testing.T) {
		g := New()
		a := mustCreate(t, g, "Person", nil)
		b := mustCreate(t, g, "Person", nil)
		if err := g.AddEdge(a, b, "", nil); !errors.Is(err, ErrInvalidEdgeType) {
			t.Errorf("error = %v, expected ErrInvalidEdgeType", err)
		}
	})

	t.Run("max edges enforced", func(t *testing.T) {
		g := New(WithMaxEdges(1))
		a := mustCreate(t, g, "Person", nil)
		b := mustCreate(t, g, "Person", nil)
		c := mustCreate(t, g, "Person", nil)
		mustEdge(t, g, a, b, "FRIEND")
		if err := g.AddEdge(a, c, "FRIEND", nil); !errors.Is(err, ErrMaxEdgesExceeded) {
			t.Errorf("error = %v, expected ErrMaxEdgesExceeded", err)
		}
	})
}

func TestNeighbors(t *testing.T) {
	g := New()
	a := mustCreate(t, g, "Person", map[string]string{"name": "Alice"})
	b := mustCreate(t, g, "Person", map[string]string{"name": "Bob"})
	c := mustCreate(t, g, "Person", map[string]string{"name": "Carol"})
	mustEdge(t, g, a, b, "FRIEND")
	mustEdge(t, g, b, a, "FRIEND")
	mustEdge(t, g, c, a, "FOLLOWS")

	tests := []struct {
		name     string
		node     string
		edgeType string
		dir      Direction
		expected []string
	}{
		{"outgoing typed", a, "FRIEND", DirectionOutgoing, []string{b}},
		{"incoming typed", a, "FRIEND", DirectionIncoming, []string{b}},
		{"both dedupes reciprocal pair", a, "FRIEND", DirectionBoth, []string{b}},
		{"incoming other type", a, "FOLLOWS", DirectionIncoming, []string{c}},
		{"any type incoming", a, "", DirectionIncoming, []string{b, c}},
		{"no matches", c, "FRIEND", DirectionIncoming, []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := g.Neighbors(tc.node, tc.edgeType, tc.dir)
			if err != nil {
				t.Fatalf("Neighbors failed: %v", err)
			}
			if len(got) != len(tc.expected) {
				t.Fatalf("Neighbors = %v, expected %v", got, tc.expected)
			}
			expected := make(map[string]bool)
			for _, id := range tc.expected {
				expected[id] = true
			}
			for _, id := range got {
				if !expected[id] {
					t.Errorf("unexpected neighbor %s", id)
				}
			}
		})
	}

	t.Run("unknown node", func(t *testing.T) {
		if _, err := g.Neighbors("ghost", "FRIEND", DirectionOutgoing); !errors.Is(err, ErrNotFound) {
			t.Errorf("error = %v, expected ErrNotFound", err)
		}
	})

	t.Run("invalid direction", func(t *testing.T) {
		if _, err := g.Neighbors(a, "FRIEND", Direction(42)); !errors.Is(err, ErrInvalidDirection) {
			t.Errorf("error = %v, expected ErrInvalidDirection", err)
		}
	})
}

func TestFindNodes(t *testing.T) {
	g := New()
	bob := mustCreate(t, g, "Person", map[string]string{"name": "Bob", "city": "Oslo"})
	mustCreate(t, g, "Person", map[string]string{"name": "Carol", "city": "Oslo"})
	mustCreate(t, g, "Bot", map[string]string{"name": "Bob"})

	if got := g.FindNodes("Person", map[string]string{"name": "Bob"}); len(got) != 1 || got[0] != bob {
		t.Errorf("FindNodes(Person, name=Bob) = %v, expected [%s]", got, bob)
	}
	if got := g.FindNodes("Person", nil); len(got) != 2 {
		t.Errorf("FindNodes(Person) returned %d nodes, expected 2", len(got))
	}
	if got := g.FindNodes("Robot", nil); len(got) != 0 {
		t.Errorf("FindNodes(Robot) = %v, expected empty", got)
	}
	if got := g.FindNodes("Person", map[string]string{"city": "Lisbon"}); len(got) != 0 {
		t.Errorf("FindNodes city=Lisbon = %v, expected empty", got)
	}
}

func TestSetNodeProperties(t *testing.T) {
	g := New()
	id := mustCreate(t, g, "Person", map[string]string{"name": "Alice"})

	if err := g.SetNodeProperties(id, map[string]string{"city": "Oslo"}); err != nil {
		t.Fatalf("SetNodeProperties failed: %v", err)
	}
	n, _ := g.GetNode(id)
	if n.Properties["name"] != "Alice" || n.Properties["city"] != "Oslo" {
		t.Errorf("properties = %v, expected name+city", n.Properties)
	}

	if err := g.SetNodeProperties("ghost", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, expected ErrNotFound", err)
	}
}

func TestValidate(t *testing.T) {
	g := New()
	a := mustCreate(t, g, "Person", nil)
	b := mustCreate(t, g, "Person", nil)
	mustEdge(t, g, a, b, "FRIEND")

	if err := g.Validate(); err != nil {
		t.Errorf("Validate failed on a consistent graph: %v", err)
	}
}

func TestGraph_ConcurrentReadsAndWrites(t *testing.T) {
	g := New()
	seeds := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		seeds = append(seeds, mustCreate(t, g, "Person", map[string]string{"n": fmt.Sprintf("%d", i)}))
	}
	for i := 1; i < 10; i++ {
		mustEdge(t, g, seeds[i-1], seeds[i], "FRIEND")
	}

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(2)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id, err := g.CreateNode("Person", nil)
				if err != nil {
					t.Errorf("writer %d: %v", w, err)
					return
				}
				if err := g.AddEdge(seeds[0], id, "FRIEND", nil); err != nil {
					t.Errorf("writer %d: %v", w, err)
					return
				}
			}
		}(w)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				if _, err := g.Neighbors(seeds[0], "FRIEND", DirectionOutgoing); err != nil {
					t.Errorf("reader %d: %v", w, err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	if err := g.Validate(); err != nil {
		t.Errorf("Validate failed after concurrent mutation: %v", err)
	}
}
