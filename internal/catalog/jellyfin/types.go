package jellyfin

// SystemInfo represents the response from GET /System/Info.
type SystemInfo struct {
	ServerName string `json:"ServerName"`
	Version    string `json:"Version"`
	ID         string `json:"Id"`
}

// User is an entry of GET /Users.
type User struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
}

// Item is the subset of BaseItemDto the client reads.
type Item struct {
	ID           string   `json:"Id"`
	Name         string   `json:"Name"`
	SortName     string   `json:"SortName"`
	Path         string   `json:"Path"`
	ChildCount   int      `json:"ChildCount"`
	AlbumCount   int      `json:"AlbumCount"`
	SongCount    int      `json:"SongCount"`
	AlbumArtist  string   `json:"AlbumArtist"`
	Artists      []string `json:"Artists"`
	RunTimeTicks int64    `json:"RunTimeTicks"`
}

// ItemsResponse wraps paginated item results.
type ItemsResponse struct {
	Items            []Item `json:"Items"`
	TotalRecordCount int    `json:"TotalRecordCount"`
	StartIndex       int    `json:"StartIndex"`
}

// playlistCreated is the response of POST /Playlists.
type playlistCreated struct {
	ID string `json:"Id"`
}
