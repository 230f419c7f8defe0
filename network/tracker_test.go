package network_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/avren/wiremesh/mesh"
	"github.com/avren/wiremesh/network"
)

// TrackerSuite drives the component tracker through connect, disconnect,
// and rebuild scenarios over a small fixed layout.
type TrackerSuite struct {
	suite.Suite

	mesh    *mesh.Mesh
	tracker *network.Tracker

	a, b, c, d mesh.Position
}

func (s *TrackerSuite) SetupTest() {
	var err error
	s.mesh, err = mesh.New()
	s.Require().NoError(err)
	s.tracker = network.NewTracker(s.mesh)

	s.a = mesh.Position{}
	s.b = mesh.Position{X: 5}
	s.c = mesh.Position{X: 10}
	s.d = mesh.Position{Z: 5}
	for _, p := range []mesh.Position{s.a, s.b, s.c, s.d} {
		s.Require().NoError(s.mesh.AddAnchor(p))
	}
}

// connect is Connect with the suite's failure handling.
func (s *TrackerSuite) connect(a, b mesh.Position) {
	s.Require().NoError(s.tracker.Connect(a, b))
}

// members resolves p's component membership, rebuilding if needed.
func (s *TrackerSuite) members(p mesh.Position) []mesh.Position {
	got, err := s.tracker.Members(p)
	s.Require().NoError(err)
	return got
}

// TestSingletonComponent: a linkless anchor resolves to itself alone.
func (s *TrackerSuite) TestSingletonComponent() {
	s.Equal([]mesh.Position{s.a}, s.members(s.a))

	comp, err := s.tracker.ComponentOf(s.a)
	s.Require().NoError(err)
	s.Equal(network.Fresh, comp.Freshness())
}

// TestComponentOfUnknownAnchor surfaces the mesh sentinel.
func (s *TrackerSuite) TestComponentOfUnknownAnchor() {
	_, err := s.tracker.ComponentOf(mesh.Position{Y: 99})
	s.ErrorIs(err, mesh.ErrAnchorNotFound)
}

// TestSharedRecord: every member of a component holds the same record, so
// one resolution serves them all.
func (s *TrackerSuite) TestSharedRecord() {
	s.connect(s.a, s.b)
	s.connect(s.b, s.c)

	ca, err := s.tracker.ComponentOf(s.a)
	s.Require().NoError(err)
	cc, err := s.tracker.ComponentOf(s.c)
	s.Require().NoError(err)
	s.Same(ca, cc)
	s.Equal([]mesh.Position{s.a, s.b, s.c}, ca.Members())
}

// TestConnectMergeEqualsRebuild: the O(n) union merge must agree with a
// from-scratch BFS resolution of the same topology.
func (s *TrackerSuite) TestConnectMergeEqualsRebuild() {
	s.connect(s.a, s.b)
	s.connect(s.c, s.d)
	s.connect(s.b, s.c) // merges {a,b} with {c,d}

	fresh := network.NewTracker(s.mesh)
	for _, p := range []mesh.Position{s.a, s.b, s.c, s.d} {
		want, err := fresh.Members(p)
		s.Require().NoError(err)
		s.Equal(want, s.members(p), "merged membership diverges from rebuild at %s", p)
	}
}

// TestConnectWithinComponent: an extra edge inside one component neither
// fails nor disturbs membership.
func (s *TrackerSuite) TestConnectWithinComponent() {
	s.connect(s.a, s.b)
	s.connect(s.b, s.d)

	before, err := s.tracker.ComponentOf(s.a)
	s.Require().NoError(err)

	s.connect(s.a, s.d)

	after, err := s.tracker.ComponentOf(s.a)
	s.Require().NoError(err)
	s.Same(before, after)
	s.Equal(3, after.Len())
}

// TestConnectRejectionLeavesStateIntact: a validator refusal propagates
// unchanged and neither the mesh nor the records move.
func (s *TrackerSuite) TestConnectRejectionLeavesStateIntact() {
	s.connect(s.a, s.b)

	err := s.tracker.Connect(s.a, s.b)
	s.ErrorIs(err, mesh.ErrDuplicateLink)
	s.Equal(1, s.mesh.Degree(s.a))

	far := mesh.Position{X: 100}
	s.Require().NoError(s.mesh.AddAnchor(far))
	err = s.tracker.Connect(s.a, far)
	s.ErrorIs(err, mesh.ErrLinkTooFar)
	s.Equal([]mesh.Position{far}, s.members(far))
}

// TestDisconnectSplits: cutting a bridge yields two components, resolved
// lazily on the next lookup.
func (s *TrackerSuite) TestDisconnectSplits() {
	s.connect(s.a, s.b)
	s.connect(s.b, s.c)

	s.True(s.tracker.Disconnect(s.b, s.c))

	s.Equal([]mesh.Position{s.a, s.b}, s.members(s.a))
	s.Equal([]mesh.Position{s.c}, s.members(s.c))
}

// TestDisconnectRedundantEdge: cutting one edge of a cycle keeps the
// component whole after the rebuild.
func (s *TrackerSuite) TestDisconnectRedundantEdge() {
	s.connect(s.a, s.b)
	s.connect(s.b, s.d)
	s.connect(s.d, s.a)

	s.True(s.tracker.Disconnect(s.a, s.b))
	s.Equal([]mesh.Position{s.a, s.d, s.b}, s.members(s.b))
}

// TestDisconnectAbsentLink is a no-op.
func (s *TrackerSuite) TestDisconnectAbsentLink() {
	s.False(s.tracker.Disconnect(s.a, s.b))
}

// TestDisconnectAll severs every link of an anchor and reports the far sides.
func (s *TrackerSuite) TestDisconnectAll() {
	s.connect(s.a, s.b)
	s.connect(s.a, s.d)

	severed := s.tracker.DisconnectAll(s.a)
	s.ElementsMatch([]mesh.Position{s.b, s.d}, severed)
	s.Equal([]mesh.Position{s.a}, s.members(s.a))
	s.Equal([]mesh.Position{s.b}, s.members(s.b))
}

// TestDropAfterAnchorRemoval: surviving members rebuild without the
// removed anchor; the removed position no longer resolves.
func (s *TrackerSuite) TestDropAfterAnchorRemoval() {
	s.connect(s.a, s.b)
	s.connect(s.b, s.c)

	severed, err := s.mesh.RemoveAnchor(s.b)
	s.Require().NoError(err)
	for _, far := range severed {
		s.tracker.Invalidate(far)
	}
	s.tracker.Drop(s.b)

	_, err = s.tracker.ComponentOf(s.b)
	s.ErrorIs(err, mesh.ErrAnchorNotFound)
	s.Equal([]mesh.Position{s.a}, s.members(s.a))
	s.Equal([]mesh.Position{s.c}, s.members(s.c))
}

// TestRebuildCarriesSignalState: the debounced input survives an
// invalidate-and-rebuild cycle, so a split side keeps decaying from its
// previous level instead of snapping to zero.
func (s *TrackerSuite) TestRebuildCarriesSignalState() {
	s.connect(s.a, s.b)

	comp, err := s.tracker.ComponentOf(s.a)
	s.Require().NoError(err)
	comp.Observe(12, 1)

	s.True(s.tracker.Disconnect(s.a, s.b))

	rebuilt, err := s.tracker.ComponentOf(s.b)
	s.Require().NoError(err)
	s.NotSame(comp, rebuilt)
	s.Equal(mesh.Power(12), rebuilt.Input())
}

// TestMergeKeepsStrongerInput: the union record adopts the higher of the
// two debounced inputs.
func (s *TrackerSuite) TestMergeKeepsStrongerInput() {
	ca, err := s.tracker.ComponentOf(s.a)
	s.Require().NoError(err)
	ca.Observe(9, 1)
	cb, err := s.tracker.ComponentOf(s.b)
	s.Require().NoError(err)
	cb.Observe(4, 1)

	s.connect(s.a, s.b)

	merged, err := s.tracker.ComponentOf(s.a)
	s.Require().NoError(err)
	s.Equal(mesh.Power(9), merged.Input())
}

func TestTrackerSuite(t *testing.T) {
	suite.Run(t, new(TrackerSuite))
}
