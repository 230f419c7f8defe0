package mesh_test

import (
	"errors"
	"testing"

	"github.com/avren/wiremesh/mesh"
)

//----------------------------------------------------------------------------//
// Position and Direction Tests
//----------------------------------------------------------------------------//

// TestPosition_DistSqr verifies squared distances along and across axes.
func TestPosition_DistSqr(t *testing.T) {
	cases := []struct {
		name string
		a, b mesh.Position
		want int64
	}{
		{"Zero", mesh.Position{}, mesh.Position{}, 0},
		{"Axis", mesh.Position{}, mesh.Position{X: 10}, 100},
		{"Pythagorean", mesh.Position{}, mesh.Position{X: 3, Y: 4}, 25},
		{"Negative", mesh.Position{X: -2, Y: -3, Z: -6}, mesh.Position{}, 49},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.DistSqr(tc.b); got != tc.want {
				t.Errorf("DistSqr(%v, %v) = %d; want %d", tc.a, tc.b, got, tc.want)
			}
			if got := tc.b.DistSqr(tc.a); got != tc.want {
				t.Errorf("DistSqr(%v, %v) = %d; want %d (symmetry)", tc.b, tc.a, got, tc.want)
			}
		})
	}
}

// TestDirection_Opposite checks that each direction pairs with its inverse
// and that following a direction and its opposite returns to the origin.
func TestDirection_Opposite(t *testing.T) {
	for _, d := range mesh.Directions {
		if d.Opposite().Opposite() != d {
			t.Errorf("Opposite(Opposite(%s)) != %s", d, d)
		}
		p := mesh.Position{X: 4, Y: 5, Z: 6}
		if back := p.Offset(d).Offset(d.Opposite()); back != p {
			t.Errorf("Offset %s then %s moved %v to %v", d, d.Opposite(), p, back)
		}
	}
}

// TestPosition_String pins the user-facing coordinate format.
func TestPosition_String(t *testing.T) {
	p := mesh.Position{X: 1, Y: -2, Z: 30}
	if got, want := p.String(), "(1, -2, 30)"; got != want {
		t.Errorf("String() = %q; want %q", got, want)
	}
}

//----------------------------------------------------------------------------//
// Anchor Lifecycle Tests
//----------------------------------------------------------------------------//

// TestMesh_AddRemoveAnchor covers registration, duplicates, and lookups.
func TestMesh_AddRemoveAnchor(t *testing.T) {
	m, err := mesh.New()
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	p := mesh.Position{X: 1, Y: 2, Z: 3}

	if err = m.AddAnchor(p); err != nil {
		t.Fatalf("AddAnchor error: %v", err)
	}
	if !m.HasAnchor(p) {
		t.Error("HasAnchor = false after AddAnchor")
	}
	if err = m.AddAnchor(p); !errors.Is(err, mesh.ErrAnchorExists) {
		t.Errorf("duplicate AddAnchor error = %v; want ErrAnchorExists", err)
	}

	if _, err = m.RemoveAnchor(p); err != nil {
		t.Fatalf("RemoveAnchor error: %v", err)
	}
	if m.HasAnchor(p) {
		t.Error("HasAnchor = true after RemoveAnchor")
	}
	if _, err = m.RemoveAnchor(p); !errors.Is(err, mesh.ErrAnchorNotFound) {
		t.Errorf("second RemoveAnchor error = %v; want ErrAnchorNotFound", err)
	}
}

// TestMesh_RemoveAnchorCascades verifies that removing an anchor drops the
// far-side entries of every link it carried.
func TestMesh_RemoveAnchorCascades(t *testing.T) {
	m := newMesh(t)
	a := mesh.Position{}
	b := mesh.Position{X: 5}
	c := mesh.Position{Z: 5}
	for _, p := range []mesh.Position{a, b, c} {
		if err := m.AddAnchor(p); err != nil {
			t.Fatalf("AddAnchor(%v) error: %v", p, err)
		}
	}
	mustLink(t, m, a, b)
	mustLink(t, m, a, c)

	severed, err := m.RemoveAnchor(a)
	if err != nil {
		t.Fatalf("RemoveAnchor error: %v", err)
	}
	if len(severed) != 2 {
		t.Fatalf("severed = %v; want 2 positions", severed)
	}
	if m.Degree(b) != 0 || m.Degree(c) != 0 {
		t.Errorf("far-side degrees = %d, %d; want 0, 0", m.Degree(b), m.Degree(c))
	}
}

//----------------------------------------------------------------------------//
// Link List Tests
//----------------------------------------------------------------------------//

// TestMesh_LinksOrderAndMutuality checks insertion order and the
// bidirectional invariant.
func TestMesh_LinksOrderAndMutuality(t *testing.T) {
	m := newMesh(t)
	a := mesh.Position{}
	b := mesh.Position{X: 3}
	c := mesh.Position{X: -3}
	for _, p := range []mesh.Position{a, b, c} {
		_ = m.AddAnchor(p)
	}
	mustLink(t, m, a, b)
	mustLink(t, m, a, c)

	links, err := m.Links(a)
	if err != nil {
		t.Fatalf("Links error: %v", err)
	}
	if len(links) != 2 || links[0] != b || links[1] != c {
		t.Errorf("Links(a) = %v; want [%v %v] in insertion order", links, b, c)
	}
	if !m.Linked(b, a) || !m.Linked(c, a) {
		t.Error("far sides do not list a: bidirectional invariant broken")
	}
}

// TestMesh_LinkedAnchorsFiltersStale verifies that targets whose anchor no
// longer exists are filtered at traversal time, never reported as errors.
func TestMesh_LinkedAnchorsFiltersStale(t *testing.T) {
	m := newMesh(t)
	a := mesh.Position{}
	b := mesh.Position{X: 3}
	_ = m.AddAnchor(a)
	_ = m.AddAnchor(b)
	if err := m.RestoreLink(a, mesh.Position{X: 9, Y: 9, Z: 9}); err != nil {
		t.Fatalf("RestoreLink error: %v", err)
	}
	mustLink(t, m, a, b)

	raw, _ := m.Links(a)
	if len(raw) != 2 {
		t.Fatalf("Links(a) = %v; want stale entry preserved", raw)
	}
	live := m.LinkedAnchors(a)
	if len(live) != 1 || live[0] != b {
		t.Errorf("LinkedAnchors(a) = %v; want [%v]", live, b)
	}
}

// TestMesh_Unlink covers mutual removal and the absent-link no-op.
func TestMesh_Unlink(t *testing.T) {
	m := newMesh(t)
	a := mesh.Position{}
	b := mesh.Position{X: 3}
	_ = m.AddAnchor(a)
	_ = m.AddAnchor(b)
	mustLink(t, m, a, b)

	if !m.Unlink(a, b) {
		t.Error("Unlink = false for existing link")
	}
	if m.Degree(a) != 0 || m.Degree(b) != 0 {
		t.Errorf("degrees after Unlink = %d, %d; want 0, 0", m.Degree(a), m.Degree(b))
	}
	if m.Unlink(a, b) {
		t.Error("Unlink = true for absent link")
	}
}

// TestMesh_Options pins defaults and option violations.
func TestMesh_Options(t *testing.T) {
	m := newMesh(t)
	if m.MaxDegree() != mesh.DefaultMaxDegree {
		t.Errorf("MaxDegree = %d; want %d", m.MaxDegree(), mesh.DefaultMaxDegree)
	}
	if m.MaxLinkDistance() != mesh.DefaultMaxLinkDistance {
		t.Errorf("MaxLinkDistance = %d; want %d", m.MaxLinkDistance(), mesh.DefaultMaxLinkDistance)
	}
	if _, err := mesh.New(mesh.WithMaxDegree(0)); !errors.Is(err, mesh.ErrOptionViolation) {
		t.Errorf("WithMaxDegree(0) error = %v; want ErrOptionViolation", err)
	}
	if _, err := mesh.New(mesh.WithMaxLinkDistance(-1)); !errors.Is(err, mesh.ErrOptionViolation) {
		t.Errorf("WithMaxLinkDistance(-1) error = %v; want ErrOptionViolation", err)
	}
}

//----------------------------------------------------------------------------//
// Helpers
//----------------------------------------------------------------------------//

func newMesh(t *testing.T, opts ...mesh.MeshOption) *mesh.Mesh {
	t.Helper()
	m, err := mesh.New(opts...)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return m
}

func mustLink(t *testing.T, m *mesh.Mesh, a, b mesh.Position) {
	t.Helper()
	if err := m.Link(a, b); err != nil {
		t.Fatalf("Link(%v, %v) error: %v", a, b, err)
	}
}
