// Package model defines domain types for OpenF1 records and derived standings.
package model

// Record is one raw flat record as returned by any endpoint.
type Record map[string]any

// SessionNameRace is the session_name used for championship races.
const SessionNameRace = "Race"

// Meeting is a race weekend.
type Meeting struct {
	MeetingKey          int       `json:"meeting_key"`
	MeetingName         string    `json:"meeting_name"`
	MeetingOfficialName string    `json:"meeting_official_name,omitempty"`
	Location            string    `json:"location,omitempty"`
	CountryName         string    `json:"country_name,omitempty"`
	CountryCode         string    `json:"country_code,omitempty"`
	CircuitShortName    string    `json:"circuit_short_name,omitempty"`
	DateStart           Timestamp `json:"date_start"`
	Year                int       `json:"year"`
}

// Session is one on-track activity within a meeting.
type Session struct {
	SessionKey       int       `json:"session_key"`
	MeetingKey       int       `json:"meeting_key"`
	SessionName      string    `json:"session_name"`
	SessionType      string    `json:"session_type"`
	DateStart        Timestamp `json:"date_start"`
	DateEnd          Timestamp `json:"date_end"`
	Location         string    `json:"location,omitempty"`
	CountryName      string    `json:"country_name,omitempty"`
	CircuitShortName string    `json:"circuit_short_name,omitempty"`
	Year             int       `json:"year"`
}

// Driver is a roster entry: a driver's identity and team for one session.
type Driver struct {
	DriverNumber  int    `json:"driver_number"`
	FullName      string `json:"full_name"`
	NameAcronym   string `json:"name_acronym,omitempty"`
	BroadcastName string `json:"broadcast_name,omitempty"`
	TeamName      string `json:"team_name"`
	TeamColour    string `json:"team_colour"`
	SessionKey    int    `json:"session_key,omitempty"`
	MeetingKey    int    `json:"meeting_key,omitempty"`
}

// Result is one driver's classification in a session.
type Result struct {
	DriverNumber int      `json:"driver_number"`
	Position     OptInt   `json:"position"`
	Points       OptFloat `json:"points"`
	GapToLeader  Flex     `json:"gap_to_leader"`
	NumberOfLaps OptInt   `json:"number_of_laps"`
	TeamName     string   `json:"team_name,omitempty"`
	DNF          bool     `json:"dnf,omitempty"`
	DNS          bool     `json:"dns,omitempty"`
	DSQ          bool     `json:"dsq,omitempty"`
	SessionKey   int      `json:"session_key,omitempty"`
	MeetingKey   int      `json:"meeting_key,omitempty"`
}

// Lap is one timed lap.
type Lap struct {
	DriverNumber    int       `json:"driver_number"`
	LapNumber       int       `json:"lap_number"`
	LapDuration     OptFloat  `json:"lap_duration"`
	DurationSector1 OptFloat  `json:"duration_sector_1"`
	DurationSector2 OptFloat  `json:"duration_sector_2"`
	DurationSector3 OptFloat  `json:"duration_sector_3"`
	IsPitOutLap     bool      `json:"is_pit_out_lap"`
	DateStart       Timestamp `json:"date_start"`
}

// Stint is a run on one set of tyres.
type Stint struct {
	DriverNumber   int    `json:"driver_number"`
	StintNumber    int    `json:"stint_number"`
	Compound       string `json:"compound"`
	LapStart       OptInt `json:"lap_start"`
	LapEnd         OptInt `json:"lap_end"`
	TyreAgeAtStart OptInt `json:"tyre_age_at_start"`
}

// Pit is one pit lane visit.
type Pit struct {
	DriverNumber int       `json:"driver_number"`
	LapNumber    int       `json:"lap_number"`
	PitDuration  OptFloat  `json:"pit_duration"`
	Date         Timestamp `json:"date"`
}

// Position is a timestamped running position for one driver.
type Position struct {
	DriverNumber int       `json:"driver_number"`
	Position     OptInt    `json:"position"`
	Date         Timestamp `json:"date"`
}

// Weather is one trackside weather sample.
type Weather struct {
	AirTemperature   OptFloat  `json:"air_temperature"`
	TrackTemperature OptFloat  `json:"track_temperature"`
	Humidity         OptFloat  `json:"humidity"`
	WindSpeed        OptFloat  `json:"wind_speed"`
	WindDirection    OptFloat  `json:"wind_direction"`
	Rainfall         OptFloat  `json:"rainfall"`
	Pressure         OptFloat  `json:"pressure"`
	Date             Timestamp `json:"date"`
}
