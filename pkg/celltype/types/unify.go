package types

// AncestorPath returns k followed by its ancestors, nearest first, with
// no repeats. String terminates every path except Missing's.
func (c *Catalogue) AncestorPath(k Kind) []Kind {
	if !k.Valid() {
		return nil
	}
	return append([]Kind(nil), c.paths[k]...)
}

// UnifyTwo finds the narrowest kind accepting values of both a and b.
// Missing unifies to the other kind. The search walks a's path first, so
// for kinds with several shared ancestors the result depends on argument
// order. The boolean is false when the kinds have no common ancestor.
func (c *Catalogue) UnifyTwo(a, b Kind) (Kind, bool) {
	if !a.Valid() || !b.Valid() {
		return 0, false
	}
	if a == b {
		return a, true
	}
	if a == Missing {
		return b, true
	}
	if b == Missing {
		return a, true
	}

	bpath := c.paths[b]
	for _, ap := range c.paths[a] {
		if containsKind(bpath, ap) {
			return ap, true
		}
	}
	return 0, false
}

// Unify left-folds UnifyTwo over ks. An empty list has no answer.
func (c *Catalogue) Unify(ks []Kind) (Kind, bool) {
	if len(ks) == 0 {
		return 0, false
	}
	acc := ks[0]
	if !acc.Valid() {
		return 0, false
	}
	for _, k := range ks[1:] {
		var ok bool
		acc, ok = c.UnifyTwo(acc, k)
		if !ok {
			return 0, false
		}
	}
	return acc, true
}
