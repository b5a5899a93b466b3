package hierarchy

import (
	"context"
	"slices"
)

// neighbours returns the nodes adjacent to any of ids in one direction.
type neighbours func(ctx context.Context, ids ...uint) ([]uint, error)

// walk collects every node reachable from start, start itself excluded.
// It expands one depth level per call of next, so the cost is one store round trip per
// level and O(V+E) overall.
func walk(ctx context.Context, start uint, next neighbours) ([]uint, error) {
	var (
		visited  = map[uint]struct{}{start: {}}
		frontier = []uint{start}
		out      []uint
	)

	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ids, err := next(ctx, frontier...)
		if err != nil {
			return nil, err
		}

		frontier = nil

		for _, id := range ids {
			if _, seen := visited[id]; seen {
				continue
			}

			visited[id] = struct{}{}
			out = append(out, id)
			frontier = append(frontier, id)
		}
	}

	slices.Sort(out)

	return out, nil
}

// reaches reports whether target is reachable from start following next.
func reaches(ctx context.Context, start, target uint, next neighbours) (bool, error) {
	if start == target {
		return true, nil
	}

	var (
		visited  = map[uint]struct{}{start: {}}
		frontier = []uint{start}
	)

	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		ids, err := next(ctx, frontier...)
		if err != nil {
			return false, err
		}

		frontier = nil

		for _, id := range ids {
			if id == target {
				return true, nil
			}

			if _, seen := visited[id]; seen {
				continue
			}

			visited[id] = struct{}{}
			frontier = append(frontier, id)
		}
	}

	return false, nil
}

func sortedUnique(ids []uint) []uint {
	slices.Sort(ids)

	return slices.Compact(ids)
}
