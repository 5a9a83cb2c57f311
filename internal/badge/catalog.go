package badge

import (
	"cmp"
	"slices"

	id "volunteerhub/pkg/domain"
)

// DefaultCatalog returns the hour badges in ascending threshold order.
func DefaultCatalog() []Badge {
	return []Badge{
		{
			ID:             "beginner",
			Name:           "Beginner",
			Description:    "Earned after completing 10 volunteer hours. First steps in your volunteering journey.",
			Criteria:       "10 hours",
			ImageURL:       "/images/badges/beginner.png",
			ThresholdHours: 10,
		},
		{
			ID:             "novice",
			Name:           "Novice",
			Description:    "Earned after completing 50 volunteer hours. You're getting the hang of it!",
			Criteria:       "50 hours",
			ImageURL:       "/images/badges/novice.png",
			ThresholdHours: 50,
		},
		{
			ID:             "changemaker",
			Name:           "Changemaker",
			Description:    "Earned after completing 75 volunteer hours. Making a real difference in your community.",
			Criteria:       "75 hours",
			ImageURL:       "/images/badges/changemaker.png",
			ThresholdHours: 75,
		},
		{
			ID:             "skillful-intern",
			Name:           "Skillful Intern",
			Description:    "Earned after completing 100 volunteer hours. You've become a skilled volunteer.",
			Criteria:       "100 hours",
			ImageURL:       "/images/badges/skillful-intern.png",
			ThresholdHours: 100,
		},
		{
			ID:             "expert-intern",
			Name:           "Expert Intern",
			Description:    "Earned after completing 300 volunteer hours. You're an expert at making an impact.",
			Criteria:       "300 hours",
			ImageURL:       "/images/badges/expert-intern.png",
			ThresholdHours: 300,
		},
		{
			ID:             "elite-intern",
			Name:           "Elite Intern",
			Description:    "Earned after completing 450 volunteer hours. You've reached the elite level of volunteering.",
			Criteria:       "450 hours",
			ImageURL:       "/images/badges/elite-intern.png",
			ThresholdHours: 450,
		},
	}
}

// SortCatalog orders badges by ascending threshold, then by id.
func SortCatalog(catalog []Badge) []Badge {
	sorted := slices.Clone(catalog)
	slices.SortStableFunc(sorted, func(a, b Badge) int {
		if c := cmp.Compare(a.ThresholdHours, b.ThresholdHours); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return sorted
}

// Eligible returns the catalog badges whose threshold total meets and that
// are not in held, in ascending threshold order. It never suggests removing
// a held badge.
func Eligible(total float64, held map[id.BadgeID]struct{}, catalog []Badge) []Badge {
	var out []Badge
	for _, b := range SortCatalog(catalog) {
		if total < b.ThresholdHours {
			break
		}
		if _, ok := held[b.ID]; ok {
			continue
		}
		out = append(out, b)
	}
	return out
}
