package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/libresine/libresine-server/internal/domain"
)

// SortMode selects the ordering of the aggregated movie list.
type SortMode string

const (
	// SortByName orders by name ascending with locale-aware collation.
	SortByName SortMode = "name"
	// SortByRating orders by rating descending, unrated last.
	SortByRating SortMode = "rating"
	// SortByRecent orders by creation time, newest first.
	SortByRecent SortMode = "recent"
	// SortByCreatedAt orders by creation time, oldest first.
	SortByCreatedAt SortMode = "created_at"
	// SortByFavorites orders favorited movies first, then by name.
	SortByFavorites SortMode = "favorites"
)

// ParseSortMode maps a query parameter value onto a sort mode, falling
// back to name ordering for anything unknown.
func ParseSortMode(value string) SortMode {
	switch SortMode(strings.ToLower(strings.TrimSpace(value))) {
	case SortByRating:
		return SortByRating
	case SortByRecent:
		return SortByRecent
	case SortByCreatedAt:
		return SortByCreatedAt
	case SortByFavorites:
		return SortByFavorites
	default:
		return SortByName
	}
}

// sorter orders movie slices. A collator is stateful and not safe for
// concurrent use, so each List call builds its own.
type sorter struct {
	collator *collate.Collator
}

func newSorter() *sorter {
	return &sorter{
		collator: collate.New(language.English, collate.IgnoreCase),
	}
}

// byName is the primary name ordering and the universal tie break.
func (s *sorter) byName(a, b *domain.Movie) bool {
	if cmp := s.collator.CompareString(a.Name, b.Name); cmp != 0 {
		return cmp < 0
	}
	// Equal names: keep ordering deterministic across sources.
	return a.Key() < b.Key()
}

// Sort orders movies in place according to the mode. favorites holds the
// composite keys of favorited movies and is only consulted for
// SortByFavorites.
func (s *sorter) Sort(movies []*domain.Movie, mode SortMode, favorites map[string]struct{}) {
	switch mode {
	case SortByRating:
		sort.SliceStable(movies, func(i, j int) bool {
			if movies[i].Rating != movies[j].Rating {
				return movies[i].Rating > movies[j].Rating
			}
			return s.byName(movies[i], movies[j])
		})
	case SortByRecent:
		sort.SliceStable(movies, func(i, j int) bool {
			if !movies[i].CreatedAt.Equal(movies[j].CreatedAt) {
				return movies[i].CreatedAt.After(movies[j].CreatedAt)
			}
			return s.byName(movies[i], movies[j])
		})
	case SortByCreatedAt:
		sort.SliceStable(movies, func(i, j int) bool {
			if !movies[i].CreatedAt.Equal(movies[j].CreatedAt) {
				return movies[i].CreatedAt.Before(movies[j].CreatedAt)
			}
			return s.byName(movies[i], movies[j])
		})
	case SortByFavorites:
		sort.SliceStable(movies, func(i, j int) bool {
			_, iFav := favorites[movies[i].Key()]
			_, jFav := favorites[movies[j].Key()]
			if iFav != jFav {
				return iFav
			}
			return s.byName(movies[i], movies[j])
		})
	default:
		sort.SliceStable(movies, func(i, j int) bool {
			return s.byName(movies[i], movies[j])
		})
	}
}
