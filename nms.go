package itemscan

import "sort"

// NonMaxSuppression removes lower-confidence detections whose bounding
// boxes overlap a retained higher-confidence one with IoU at or above
// the threshold.
//
// The greedy pass visits detections in descending confidence (ties visit
// the earlier-indexed detection first, keeping the result stable and
// deterministic); each retained detection suppresses every unvisited
// overlap. Detections without a Position cannot be overlap-checked and
// are always retained. Output preserves input order and never grows:
// suppression only removes.
func NonMaxSuppression(detections []Detection, iouThreshold float64) []Detection {
	if len(detections) <= 1 {
		return detections
	}

	order := make([]int, 0, len(detections))
	for i, d := range detections {
		if d.Position != nil {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return detections[order[a]].Confidence > detections[order[b]].Confidence
	})

	suppressed := make([]bool, len(detections))
	for k, i := range order {
		if suppressed[i] {
			continue
		}
		for _, j := range order[k+1:] {
			if suppressed[j] {
				continue
			}
			if IoU(*detections[i].Position, *detections[j].Position) >= iouThreshold {
				suppressed[j] = true
			}
		}
	}

	out := make([]Detection, 0, len(detections))
	for i, d := range detections {
		if !suppressed[i] {
			out = append(out, d)
		}
	}
	return out
}
