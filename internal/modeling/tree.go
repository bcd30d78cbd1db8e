package modeling

import (
	"math/rand"
	"sort"
)

const leafFeature = -1

// minImpurityDecrease is the smallest weighted Gini gain accepted for a split
const minImpurityDecrease = 1e-12

// TreeNode is one node of a fitted tree. Children are indices into the
// tree's node slice; leaves have Feature == -1.
type TreeNode struct {
	Feature   int       `msgpack:"f" json:"feature"`
	Threshold float64   `msgpack:"t" json:"threshold"`
	Left      int       `msgpack:"l" json:"left"`
	Right     int       `msgpack:"r" json:"right"`
	Proba     []float64 `msgpack:"p" json:"proba"`
}

// DecisionTree is a CART classifier splitting on Gini impurity.
type DecisionTree struct {
	MaxDepth        int        `msgpack:"max_depth" json:"max_depth"`
	MinSamplesSplit int        `msgpack:"min_samples_split" json:"min_samples_split"`
	MaxFeatures     int        `msgpack:"max_features" json:"max_features"`
	NClasses        int        `msgpack:"n_classes" json:"n_classes"`
	Nodes           []TreeNode `msgpack:"nodes" json:"nodes"`
	Importances     []float64  `msgpack:"importances" json:"importances"`
}

type treeBuilder struct {
	tree *DecisionTree
	X    [][]float64
	y    []int
	rnd  *rand.Rand
	p    int
}

// fit grows the tree on the given sample indices (duplicates allowed).
func (t *DecisionTree) fit(X [][]float64, y []int, sample []int, nClasses int, rnd *rand.Rand) {
	p := len(X[0])
	t.NClasses = nClasses
	t.Nodes = t.Nodes[:0]
	t.Importances = make([]float64, p)
	if t.MaxFeatures <= 0 || t.MaxFeatures > p {
		t.MaxFeatures = p
	}
	if t.MinSamplesSplit < 2 {
		t.MinSamplesSplit = 2
	}
	b := &treeBuilder{tree: t, X: X, y: y, rnd: rnd, p: p}
	b.build(append([]int(nil), sample...), 0)
}

func (b *treeBuilder) counts(idx []int) []float64 {
	c := make([]float64, b.tree.NClasses)
	for _, i := range idx {
		c[b.y[i]]++
	}
	return c
}

func gini(counts []float64, n float64) float64 {
	if n == 0 {
		return 0
	}
	g := 1.0
	for _, c := range counts {
		q := c / n
		g -= q * q
	}
	return g
}

func (b *treeBuilder) build(idx []int, depth int) int {
	counts := b.counts(idx)
	n := float64(len(idx))
	proba := make([]float64, len(counts))
	for k, c := range counts {
		proba[k] = c / n
	}

	nodeID := len(b.tree.Nodes)
	b.tree.Nodes = append(b.tree.Nodes, TreeNode{Feature: leafFeature, Proba: proba})

	impurity := gini(counts, n)
	if impurity == 0 || len(idx) < b.tree.MinSamplesSplit ||
		(b.tree.MaxDepth > 0 && depth >= b.tree.MaxDepth) {
		return nodeID
	}

	feature, threshold, childImpurity, ok := b.bestSplit(idx, counts)
	gain := n*impurity - childImpurity
	if !ok || gain <= minImpurityDecrease {
		return nodeID
	}
	b.tree.Importances[feature] += gain

	var left, right []int
	for _, i := range idx {
		if b.X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	node := &b.tree.Nodes[nodeID]
	node.Feature = feature
	node.Threshold = threshold
	node.Left = l
	node.Right = r
	return nodeID
}

// bestSplit scans a random subset of MaxFeatures features. When all of them
// are constant on idx, it keeps drawing from the remaining features until a
// usable one is found. The returned impurity is the sample-weighted sum of
// the two children's Gini impurities.
func (b *treeBuilder) bestSplit(idx []int, parent []float64) (feature int, threshold, impurity float64, ok bool) {
	order := b.rnd.Perm(b.p)
	best := 0.0
	visited := 0

	sorted := append([]int(nil), idx...)
	leftCounts := make([]float64, len(parent))
	rightCounts := make([]float64, len(parent))

	for _, f := range order {
		if visited >= b.tree.MaxFeatures && ok {
			break
		}
		visited++

		sort.Slice(sorted, func(a, c int) bool { return b.X[sorted[a]][f] < b.X[sorted[c]][f] })
		if b.X[sorted[0]][f] == b.X[sorted[len(sorted)-1]][f] {
			continue
		}

		for k := range leftCounts {
			leftCounts[k] = 0
			rightCounts[k] = parent[k]
		}
		n := float64(len(sorted))
		for pos := 0; pos < len(sorted)-1; pos++ {
			cls := b.y[sorted[pos]]
			leftCounts[cls]++
			rightCounts[cls]--

			v, next := b.X[sorted[pos]][f], b.X[sorted[pos+1]][f]
			if v == next {
				continue
			}
			nl := float64(pos + 1)
			nr := n - nl
			score := nl*gini(leftCounts, nl) + nr*gini(rightCounts, nr)
			if !ok || score < best {
				ok = true
				best = score
				feature = f
				threshold = v + (next-v)/2
				if threshold == next {
					threshold = v
				}
			}
		}
	}
	return feature, threshold, best, ok
}

// proba walks the tree for one row and returns the leaf class distribution.
func (t *DecisionTree) proba(row []float64) []float64 {
	i := 0
	for {
		node := &t.Nodes[i]
		if node.Feature == leafFeature {
			return node.Proba
		}
		if row[node.Feature] <= node.Threshold {
			i = node.Left
		} else {
			i = node.Right
		}
	}
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (t *DecisionTree) Depth() int {
	if len(t.Nodes) == 0 {
		return 0
	}
	var walk func(i int) int
	walk = func(i int) int {
		n := t.Nodes[i]
		if n.Feature == leafFeature {
			return 0
		}
		return 1 + max(walk(n.Left), walk(n.Right))
	}
	return walk(0)
}
