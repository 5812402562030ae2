package bvh

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/achilleasa/hitmiss/log"
	"github.com/achilleasa/hitmiss/types"
)

func TestBuildErrors(t *testing.T) {
	if _, err := Build([]*testBox{}, BBoxBounds[*testBox]()); err != ErrNoElements {
		t.Fatalf("expected ErrNoElements; got %v", err)
	}
	if _, err := Build[*testBox](nil, BBoxBounds[*testBox]()); err != ErrNoElements {
		t.Fatalf("expected ErrNoElements for nil slice; got %v", err)
	}
	if _, err := Build([]*testBox{box(0, 0, 0, 1, 1, 1)}, nil); err != ErrNoBoundingProvider {
		t.Fatalf("expected ErrNoBoundingProvider; got %v", err)
	}
}

func TestBuildLayout(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for count := 1; count <= 65; count++ {
		elems := randomBoxes(rng, count)
		h := mustBuild(elems)

		if err := h.Validate(); err != nil {
			t.Fatalf("[count %d] validation failed: %v", count, err)
		}

		nodes := h.Nodes()
		if exp := 2*count - 1; len(nodes) != exp {
			t.Fatalf("[count %d] expected %d nodes; got %d", count, exp, len(nodes))
		}
		if h.Root() != NodeIndex(len(nodes)-1) {
			t.Fatalf("[count %d] expected root to be the last node; got %d", count, h.Root())
		}
		for index := 0; index < count; index++ {
			if !nodes[index].IsLeaf() || nodes[index].Element != index {
				t.Fatalf("[count %d] expected node %d to be the leaf for element %d; got %v", count, index, index, nodes[index])
			}
		}
		for index := count; index < len(nodes); index++ {
			if nodes[index].IsLeaf() {
				t.Fatalf("[count %d] expected node %d to be an interior node", count, index)
			}
		}

		stats := h.Stats()
		if stats.Elements != count || stats.Leaves != count || stats.Interior != count-1 || stats.Nodes != len(nodes) {
			t.Fatalf("[count %d] unexpected node stats %+v", count, stats)
		}
		splits := stats.SplitAxes[0] + stats.SplitAxes[1] + stats.SplitAxes[2]
		if splits != count-1 {
			t.Fatalf("[count %d] expected %d splits; got %d", count, count-1, splits)
		}
	}
}

func TestSingleElementIsRootLeaf(t *testing.T) {
	h := mustBuild([]*testBox{box(0, 0, 0, 1, 1, 1)})

	if len(h.Nodes()) != 1 || h.Root() != 0 {
		t.Fatalf("expected a single root leaf; got %d nodes, root %d", len(h.Nodes()), h.Root())
	}
	root := h.Node(h.Root())
	if !root.IsLeaf() || root.Hit != NullNode || root.Miss != NullNode {
		t.Fatalf("expected root leaf with null links; got %v", root)
	}
}

func TestTwoElementLinks(t *testing.T) {
	h := mustBuild([]*testBox{box(0, 0, 0, 1, 1, 1), box(4, 0, 0, 5, 1, 1)})

	type spec struct {
		index NodeIndex
		hit   NodeIndex
		miss  NodeIndex
	}
	specs := []spec{
		// Left leaf continues with its sibling either way
		{0, 1, 1},
		// Right leaf ends the traversal
		{1, NullNode, NullNode},
		// Root
		{2, 0, NullNode},
	}

	for _, s := range specs {
		node := h.Node(s.index)
		if node.Hit != s.hit || node.Miss != s.miss {
			t.Fatalf("[node %d] expected links (hit: %d, miss: %d); got (hit: %d, miss: %d)", s.index, s.hit, s.miss, node.Hit, node.Miss)
		}
	}
}

func TestRootEnclosesAllElements(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	elems := randomBoxes(rng, 500)
	h := mustBuild(elems)

	rootBox := h.Node(h.Root()).Box
	for index, elem := range elems {
		if !rootBox.StrictlyEncloses(elem.BBox()) {
			t.Fatalf("expected root box %v to strictly enclose element %d box %v", rootBox, index, elem.BBox())
		}
		if h.ElementBounds(index) != elem.BBox() {
			t.Fatalf("expected cached bounds %v for element %d; got %v", elem.BBox(), index, h.ElementBounds(index))
		}
	}

	if exp := h.bounds.union(); h.Bounds() != exp {
		t.Fatalf("expected hierarchy bounds %v; got %v", exp, h.Bounds())
	}
	if !rootBox.Encloses(h.Bounds()) {
		t.Fatalf("expected root box %v to enclose hierarchy bounds %v", rootBox, h.Bounds())
	}
}

func TestMissChainTerminates(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	h := mustBuild(randomBoxes(rng, 200))

	for index := range h.Nodes() {
		steps, ok := h.walk(NodeIndex(index), NullNode, false, nil)
		if !ok {
			t.Fatalf("miss chain starting at node %d did not terminate after %d steps", index, steps)
		}
	}
}

func TestBoundsProviderCalls(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for _, count := range []int{1, 2, 17, 300} {
		elems := randomBoxes(rng, count)
		calls := 0
		provider := BoundFunc[*testBox](func(axis types.Axis, wantMin bool, elem *testBox) float32 {
			calls++
			if wantMin {
				return elem.min[axis]
			}
			return elem.max[axis]
		})

		h, err := Build(elems, provider)
		if err != nil {
			t.Fatal(err)
		}
		if exp := 6 * count; calls != exp {
			t.Fatalf("[count %d] expected %d provider calls; got %d", count, exp, calls)
		}

		// Queries never consult the provider
		origin, dir := randomRay(rng)
		interval := Interval{0, 1000}
		h.Intersect(origin, dir, &interval, nil)
		if exp := 6 * count; calls != exp {
			t.Fatalf("[count %d] expected intersection not to call the provider; got %d calls", count, calls-exp)
		}
	}
}

func TestDuplicateAndDegenerateElements(t *testing.T) {
	elems := make([]*testBox, 33)
	for index := range elems {
		if index%2 == 0 {
			elems[index] = box(1, 1, 1, 1, 1, 1)
		} else {
			elems[index] = box(0, 0, 0, 2, 2, 2)
		}
	}
	h := mustBuild(elems)
	if err := h.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestValidateDetectsCorruption(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	type spec struct {
		descr   string
		corrupt func(h *Hierarchy[*testBox])
	}
	specs := []spec{
		{"cyclic miss link", func(h *Hierarchy[*testBox]) { h.nodes[h.Root()].Miss = h.Root() }},
		{"out of range link", func(h *Hierarchy[*testBox]) { h.nodes[0].Hit = NodeIndex(len(h.nodes)) }},
		{"shrunk root box", func(h *Hierarchy[*testBox]) { h.nodes[h.Root()].Box.Max[0] = h.nodes[h.Root()].Box.Min[0] }},
		{"leaf element mismatch", func(h *Hierarchy[*testBox]) { h.nodes[1].Element = 0 }},
		{"skipped subtree", func(h *Hierarchy[*testBox]) { h.nodes[h.Root()].Hit = NullNode }},
	}

	for _, s := range specs {
		h := mustBuild(randomBoxes(rng, 20))
		s.corrupt(h)
		if err := h.Validate(); err == nil {
			t.Fatalf("[%s] expected validation to fail", s.descr)
		}
	}
}

func TestBuildLogsStats(t *testing.T) {
	var buf bytes.Buffer
	log.SetSink(&buf)
	log.SetLevel(log.Debug)
	defer func() {
		log.SetLevel(log.Notice)
	}()

	mustBuild([]*testBox{box(0, 0, 0, 1, 1, 1), box(2, 2, 2, 3, 3, 3)}, WithLogger(log.New("bvh-test")))

	out := buf.String()
	if !strings.Contains(out, "[bvh-test]") || !strings.Contains(out, "BVH tree build time") {
		t.Fatalf("expected build stats to be logged; got %q", out)
	}
}

func TestStatsTable(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	h := mustBuild(randomBoxes(rng, 10))

	table := h.Stats().Table()
	for _, exp := range []string{"Metric", "Elements", "Splits along X", "Node memory", "Build time"} {
		if !strings.Contains(table, exp) {
			t.Fatalf("expected table to contain %q; got\n%s", exp, table)
		}
	}
	if h.Stats().MemoryBytes <= 0 {
		t.Fatalf("expected a positive node memory size; got %d", h.Stats().MemoryBytes)
	}
}

func TestFmtSize(t *testing.T) {
	type spec struct {
		in  int
		exp string
	}
	specs := []spec{
		{12, " 12 bytes"},
		{2500, "2.5 kb"},
		{3400000, "  3.4 mb"},
	}
	for index, s := range specs {
		if got := fmtSize(s.in); got != s.exp {
			t.Fatalf("[spec %d] expected %q; got %q", index, s.exp, got)
		}
	}
}
