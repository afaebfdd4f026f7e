package hungarian

import "testing"

func TestSolveFindsPerfectMatching(t *testing.T) {
	m := New()

	m.AddEdge(0, 0, 1)
	m.AddEdge(0, 1, 1)
	m.AddEdge(1, 0, 1)
	m.AddEdge(2, 1, 1)
	m.AddEdge(2, 2, 1)

	assign := m.Solve(true)

	if len(assign) != 3 {
		t.Fatalf("expected a perfect matching of size 3, got %d: %v", len(assign), assign)
	}

	seenRight := map[int]bool{}
	for i, j := range assign {
		if seenRight[j] {
			t.Errorf("right vertex %d matched more than once (from left %d)", j, i)
		}

		seenRight[j] = true
	}
}

func TestSolveFindsMaximumWhenNoPerfectMatchingExists(t *testing.T) {
	m := New()

	m.AddEdge(0, 0, 1)
	m.AddEdge(1, 0, 1)

	assign := m.Solve(true)

	if len(assign) != 1 {
		t.Errorf("only one of the two left vertices can be matched to the single right vertex, got %d", len(assign))
	}
}
