package graph

import "testing"

func TestDetector_DetectCycle(t *testing.T) {
	tests := []struct {
		name          string
		edges         map[string][]string // task -> blockers
		start         string
		expectedCycle bool
	}{
		{
			name:          "no cycle - linear chain",
			edges:         map[string][]string{"t3": {"t2"}, "t2": {"t1"}, "t1": {}},
			start:         "t3",
			expectedCycle: false,
		},
		{
			name:          "simple cycle",
			edges:         map[string][]string{"t1": {"t2"}, "t2": {"t1"}},
			start:         "t1",
			expectedCycle: true,
		},
		{
			name:          "three-task cycle",
			edges:         map[string][]string{"t1": {"t2"}, "t2": {"t3"}, "t3": {"t1"}},
			start:         "t1",
			expectedCycle: true,
		},
		{
			name:          "diamond, no cycle",
			edges:         map[string][]string{"t4": {"t2", "t3"}, "t2": {"t1"}, "t3": {"t1"}, "t1": {}},
			start:         "t4",
			expectedCycle: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDetector()
			for task, deps := range tt.edges {
				for _, dep := range deps {
					d.addEdge(task, dep)
				}
			}
			hasCycle, _ := d.detectCycle(tt.start)
			if hasCycle != tt.expectedCycle {
				t.Fatalf("detectCycle(%s) = %v, want %v", tt.start, hasCycle, tt.expectedCycle)
			}
		})
	}
}

func TestDetector_WouldCycle(t *testing.T) {
	d := newDetector()
	d.addEdge("t2", "t1") // t2 depends on t1

	wouldCycle, _ := d.wouldCycle("t1", "t2") // t1 depends on t2 -> cycle
	if !wouldCycle {
		t.Fatalf("expected adding t1->t2 to close a cycle")
	}

	wouldCycle, _ = d.wouldCycle("t3", "t1")
	if wouldCycle {
		t.Fatalf("did not expect t3->t1 to close a cycle")
	}

	wouldCycle, _ = d.wouldCycle("t1", "t1")
	if !wouldCycle {
		t.Fatalf("expected self-loop to be reported as a cycle")
	}
}
