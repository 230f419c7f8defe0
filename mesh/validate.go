package mesh

import "fmt"

// CanLink checks whether a link a↔b would be admissible. It is a pure
// check with no side effects; Link calls it before mutating anything.
//
// Checks, in order:
//  1. both endpoints exist (ErrAnchorNotFound);
//  2. a != b (ErrSelfLink);
//  3. the link is not already present (ErrDuplicateLink);
//  4. neither endpoint is at its degree limit (ErrDegreeLimit);
//  5. the squared Euclidean distance is within the limit (ErrLinkTooFar).
//
// The distance check compares squared values so no square root is taken.
// Returned errors wrap the sentinel with endpoint context for user-facing
// messages; match with errors.Is.
func (m *Mesh) CanLink(a, b Position) error {
	an, ok := m.anchors[a]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAnchorNotFound, a)
	}
	bn, ok := m.anchors[b]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAnchorNotFound, b)
	}
	if a == b {
		return fmt.Errorf("%w: %s", ErrSelfLink, a)
	}
	if m.Linked(a, b) || m.Linked(b, a) {
		return fmt.Errorf("%w: %s and %s", ErrDuplicateLink, a, b)
	}
	if len(an.links) >= m.maxDegree {
		return fmt.Errorf("%w: %s already carries %d links", ErrDegreeLimit, a, len(an.links))
	}
	if len(bn.links) >= m.maxDegree {
		return fmt.Errorf("%w: %s already carries %d links", ErrDegreeLimit, b, len(bn.links))
	}
	maxSqr := int64(m.maxLinkDistance) * int64(m.maxLinkDistance)
	if d := a.DistSqr(b); d > maxSqr {
		return fmt.Errorf("%w: %s to %s exceeds %d grid units", ErrLinkTooFar, a, b, m.maxLinkDistance)
	}
	return nil
}
