package domain

import "slices"

// SiblingGroup is a set of package ids that must ride the same truck.
type SiblingGroup []string

// MergeSiblingGroups folds every package's sibling list into disjoint groups.
// Groups sharing any member are merged. Groups are ordered by the position
// of their first member in pkgs and members keep input order.
func MergeSiblingGroups(pkgs []*Package) []SiblingGroup {
	order := make(map[string]int, len(pkgs))
	for i, p := range pkgs {
		order[p.PackageID] = i
	}

	uf := newUnionFind()
	for _, p := range pkgs {
		if len(p.Siblings) == 0 {
			continue
		}
		uf.add(p.PackageID)
		for _, s := range p.Siblings {
			uf.add(s)
			uf.union(p.PackageID, s)
		}
	}

	byRoot := make(map[string]SiblingGroup)
	var roots []string
	for _, id := range uf.ids {
		r := uf.find(id)
		if _, ok := byRoot[r]; !ok {
			roots = append(roots, r)
		}
		byRoot[r] = append(byRoot[r], id)
	}

	rank := func(id string) int {
		if i, ok := order[id]; ok {
			return i
		}
		return len(pkgs)
	}

	groups := make([]SiblingGroup, 0, len(roots))
	for _, r := range roots {
		g := byRoot[r]
		slices.SortStableFunc(g, func(a, b string) int { return rank(a) - rank(b) })
		groups = append(groups, g)
	}
	slices.SortStableFunc(groups, func(a, b SiblingGroup) int { return rank(a[0]) - rank(b[0]) })

	return groups
}

type unionFind struct {
	parent map[string]string
	size   map[string]int
	ids    []string
}

func newUnionFind() *unionFind {
	return &unionFind{parent: map[string]string{}, size: map[string]int{}}
}

func (u *unionFind) add(id string) {
	if _, ok := u.parent[id]; ok {
		return
	}
	u.parent[id] = id
	u.size[id] = 1
	u.ids = append(u.ids, id)
}

func (u *unionFind) find(id string) string {
	for u.parent[id] != id {
		u.parent[id] = u.parent[u.parent[id]]
		id = u.parent[id]
	}
	return id
}

func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.size[ra] < u.size[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	u.size[ra] += u.size[rb]
}
