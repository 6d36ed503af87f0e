package entity

// CommitmentFilter narrows commitment listings. Zero values are ignored.
type CommitmentFilter struct {
	CompanyID string
	Group     SeriesID
	Year      int
	Month     int

	// RecurringOnly keeps only records that belong to a recurring group.
	RecurringOnly bool
}
