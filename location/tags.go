package location

// aggregateTags computes the effective tag list of a scope from the tag
// sets of its matching leaves. A tag present on every leaf stays positive
// ("#x"); a tag present on some but not all leaves is negated ("~#x");
// a tag present on no leaf is absent. Positive tags come first, each group
// in source encounter order. A single leaf yields its own tags unchanged.
func aggregateTags(leaves []serverLocation) []string {
	if len(leaves) == 0 {
		return nil
	}

	var order []string
	counts := make(map[string]int)
	for _, leaf := range leaves {
		seen := make(map[string]bool)
		for _, tag := range leaf.tags {
			if seen[tag] {
				continue
			}
			seen[tag] = true
			if counts[tag] == 0 {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	var positive, negated []string
	for _, tag := range order {
		if counts[tag] == len(leaves) {
			positive = append(positive, tag)
		} else {
			negated = append(negated, "~"+tag)
		}
	}
	return append(positive, negated...)
}

// hasTag reports whether any leaf carries the given tag.
func hasTag(leaves []serverLocation, tag string) bool {
	for _, leaf := range leaves {
		for _, t := range leaf.tags {
			if t == tag {
				return true
			}
		}
	}
	return false
}
