package types

// RiderRecord is one row of the rider reference feed after normalization.
// Rows are immutable once loaded and are looked up by Name, which is not
// guaranteed unique across the roster.
type RiderRecord struct {
	ID      string `json:"id"` // registration number; may be empty
	Name    string `json:"name"`
	Region  string `json:"region"`
	Ki      string `json:"ki"` // career class, "N期"
	Grade   string `json:"grade"`
	Profile string `json:"profile"`
}

// VenueDayCard is the set of races scheduled at one venue today.
type VenueDayCard struct {
	Venue string     `json:"venue"`
	Races []RaceSlot `json:"races"`
}

// RaceSlot is one race on a day card.
type RaceSlot struct {
	RaceNumber int    `json:"race_number"`
	URL        string `json:"url,omitempty"` // entry page URL when the feed carries one
}

// Draft is the single ephemeral draft slot: the in-progress note text and
// caret position, overwritten on every edit and cleared on submit.
type Draft struct {
	Text  string `json:"text"`
	Caret int    `json:"caret"`
	TS    int64  `json:"ts"` // unix millis of the last save
}

// Credential is the transient sync token slot. It is revalidated before
// every remote call and never trusted past Expiry.
type Credential struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Expiry       int64  `json:"expires_at"` // unix millis
}

// Valid reports whether the credential can still authorize a call at the
// given unix-millisecond instant.
func (c *Credential) Valid(nowMillis int64) bool {
	return c != nil && c.AccessToken != "" && c.Expiry > nowMillis
}
