package schema

// TrackerEntryTable represents the 'tracker.entry' table
type TrackerEntryTable struct {
	Table          string
	ID             string
	OwnerID        string
	Title          string
	TitleKey       string
	CoverImage     string
	Status         string
	CurrentEpisode string
	TotalEpisodes  string
	CurrentSeason  string
	TotalSeasons   string
	Rating         string
	Genres         string
	Notes          string
	Favorite       string
	StartDate      string
	EndDate        string
	MalID          string
	CreatedAt      string
	UpdatedAt      string
}

// TrackerEntry is the schema definition for tracker.entry
var TrackerEntry = TrackerEntryTable{
	Table:          "tracker.entry",
	ID:             "id",
	OwnerID:        "ownerid",
	Title:          "title",
	TitleKey:       "titlekey",
	CoverImage:     "coverimage",
	Status:         "status",
	CurrentEpisode: "currentepisode",
	TotalEpisodes:  "totalepisodes",
	CurrentSeason:  "currentseason",
	TotalSeasons:   "totalseasons",
	Rating:         "rating",
	Genres:         "genres",
	Notes:          "notes",
	Favorite:       "favorite",
	StartDate:      "startdate",
	EndDate:        "enddate",
	MalID:          "malid",
	CreatedAt:      "createdat",
	UpdatedAt:      "updatedat",
}

// Columns returns all columns in the order the entry store scans them
func (t TrackerEntryTable) Columns() []string {
	return []string{
		t.ID, t.OwnerID, t.Title, t.CoverImage, t.Status, t.CurrentEpisode,
		t.TotalEpisodes, t.CurrentSeason, t.TotalSeasons, t.Rating, t.Genres,
		t.Notes, t.Favorite, t.StartDate, t.EndDate, t.MalID, t.CreatedAt, t.UpdatedAt,
	}
}
