package goal

type Goal struct {
	Goals string `json:"goals"`
}
