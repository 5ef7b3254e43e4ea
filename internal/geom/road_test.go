package geom

import "testing"

func TestPointIsInsideHorizontal(t *testing.T) {
	r := NewHorizontal(Point{X: 0, Y: 0}, 10)

	cases := []struct {
		name string
		p    Point
		want bool
	}{
		{"on centerline", Point{X: 5, Y: 0}, true},
		{"within inflation above", Point{X: 5, Y: 0.4}, true},
		{"just outside inflation", Point{X: 5, Y: 0.41}, false},
		{"before start but inflated", Point{X: -0.4, Y: 0}, true},
		{"well before start", Point{X: -0.41, Y: 0}, false},
		{"past end but inflated", Point{X: 10.4, Y: 0}, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := r.PointIsInside(c.p); got != c.want {
				t.Errorf("PointIsInside(%v) = %v, want %v", c.p, got, c.want)
			}
		})
	}
}

func TestClampEndpointStopsAtWall(t *testing.T) {
	r := NewHorizontal(Point{X: 0, Y: 0}, 10)

	start := Point{X: 0, Y: 0}
	end := Point{X: 20, Y: 0}

	got := r.ClampEndpoint(start, end)
	want := Point{X: 10.4, Y: 0}

	if got != want {
		t.Errorf("ClampEndpoint = %v, want %v", got, want)
	}
}

func TestClampEndpointPerpendicularFromCenterlineReachesHalfWidth(t *testing.T) {
	r := NewHorizontal(Point{X: 0, Y: 0}, 10)

	start := Point{X: 5, Y: 0}
	end := Point{X: 5, Y: 5}

	got := r.ClampEndpoint(start, end)
	want := Point{X: 5, Y: BoundaryOffset}
	if got != want {
		t.Errorf("ClampEndpoint = %v, want %v", got, want)
	}
}

func TestClampEndpointPerpendicularAtBoundaryMakesNoProgress(t *testing.T) {
	r := NewHorizontal(Point{X: 0, Y: 0}, 10)

	start := Point{X: 5, Y: BoundaryOffset}
	end := Point{X: 5, Y: 5}

	got := r.ClampEndpoint(start, end)
	if got != start {
		t.Errorf("ClampEndpoint = %v, want start %v (no further progress at the boundary)", got, start)
	}
}

func TestClampEndpointReachesTargetWhenInside(t *testing.T) {
	r := NewHorizontal(Point{X: 0, Y: 0}, 10)

	start := Point{X: 0, Y: 0}
	end := Point{X: 5, Y: 0}

	if got := r.ClampEndpoint(start, end); got != end {
		t.Errorf("ClampEndpoint = %v, want %v", got, end)
	}
}

func TestVerticalRoadSymmetry(t *testing.T) {
	r := NewVertical(Point{X: 0, Y: 0}, 10)

	if !r.PointIsInside(Point{X: 0.4, Y: 5}) {
		t.Error("expected point within vertical inflation to be inside")
	}
	if r.PointIsInside(Point{X: 0.41, Y: 5}) {
		t.Error("expected point outside vertical inflation to not be inside")
	}

	got := r.ClampEndpoint(Point{X: 0, Y: 0}, Point{X: 0, Y: 20})
	want := Point{X: 0, Y: 10.4}
	if got != want {
		t.Errorf("ClampEndpoint = %v, want %v", got, want)
	}
}

func TestRandomPointAtClampsToLength(t *testing.T) {
	r := NewHorizontal(Point{X: 0, Y: 0}, 10)

	got := r.RandomPointAt(100)
	want := Point{X: 10, Y: 0}
	if got != want {
		t.Errorf("RandomPointAt(100) = %v, want %v", got, want)
	}
}
