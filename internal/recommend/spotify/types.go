package spotify

type artist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Popularity int    `json:"popularity"`
	Followers  struct {
		Total int `json:"total"`
	} `json:"followers"`
}

type searchResponse struct {
	Artists struct {
		Items []artist `json:"items"`
	} `json:"artists"`
}

type album struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

type track struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Popularity int    `json:"popularity"`
	Album      album  `json:"album"`
}

type topTracksResponse struct {
	Tracks []track `json:"tracks"`
}

type albumsResponse struct {
	Items []album `json:"items"`
}

type albumTracksResponse struct {
	Items []struct {
		ID string `json:"id"`
	} `json:"items"`
}

type tracksResponse struct {
	Tracks []*track `json:"tracks"`
}
