package collision

import "testing"

func TestFindGatherEventsPickupThenOffice(t *testing.T) {
	gatherers := []Gatherer{
		{Start: Point{X: 0, Y: 0}, End: Point{X: 7, Y: 0}, Width: 0.6},
	}
	items := []Item{
		{Position: Point{X: 3, Y: 0}, Width: 0}, // loot
		{Position: Point{X: 6, Y: 0}, Width: 0.5}, // office
	}

	events := FindGatherEvents(gatherers, items)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].ItemIndex != 0 || events[1].ItemIndex != 1 {
		t.Fatalf("expected loot pickup before office deposit, got %+v", events)
	}
	if events[0].Time >= events[1].Time {
		t.Errorf("expected increasing time order, got %+v", events)
	}
}

func TestFindGatherEventsOutOfRangeIgnored(t *testing.T) {
	gatherers := []Gatherer{
		{Start: Point{X: 0, Y: 0}, End: Point{X: 10, Y: 0}, Width: 0.6},
	}
	items := []Item{
		{Position: Point{X: 5, Y: 5}, Width: 0}, // far off the line
	}

	events := FindGatherEvents(gatherers, items)
	if len(events) != 0 {
		t.Fatalf("expected no events, got %+v", events)
	}
}

func TestFindGatherEventsProjectionOutsideSegmentIgnored(t *testing.T) {
	gatherers := []Gatherer{
		{Start: Point{X: 0, Y: 0}, End: Point{X: 5, Y: 0}, Width: 0.6},
	}
	items := []Item{
		{Position: Point{X: 10, Y: 0}, Width: 0}, // beyond the segment's end
	}

	events := FindGatherEvents(gatherers, items)
	if len(events) != 0 {
		t.Fatalf("expected no events for out-of-segment item, got %+v", events)
	}
}

func TestFindGatherEventsDegenerateGathererProducesNoEvents(t *testing.T) {
	gatherers := []Gatherer{
		{Start: Point{X: 3, Y: 3}, End: Point{X: 3, Y: 3}, Width: 0.6},
	}
	items := []Item{
		{Position: Point{X: 3, Y: 3}, Width: 0.5},
	}

	events := FindGatherEvents(gatherers, items)
	if len(events) != 0 {
		t.Fatalf("expected no events for a stationary gatherer, got %+v", events)
	}
}

func TestFindGatherEventsTieBreakOrder(t *testing.T) {
	// Two gatherers reach their items at the same time and distance;
	// ordering must fall back to gatherer index, then item index.
	gatherers := []Gatherer{
		{Start: Point{X: 0, Y: 0}, End: Point{X: 10, Y: 0}, Width: 0.6},
		{Start: Point{X: 0, Y: 2}, End: Point{X: 10, Y: 2}, Width: 0.6},
	}
	items := []Item{
		{Position: Point{X: 5, Y: 2}, Width: 0},
		{Position: Point{X: 5, Y: 0}, Width: 0},
	}

	events := FindGatherEvents(gatherers, items)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].GathererIndex != 0 || events[0].ItemIndex != 1 {
		t.Errorf("expected gatherer 0 / item 1 first, got %+v", events[0])
	}
	if events[1].GathererIndex != 1 || events[1].ItemIndex != 0 {
		t.Errorf("expected gatherer 1 / item 0 second, got %+v", events[1])
	}
}
