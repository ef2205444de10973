package types

// Client -> Server
//
// makeDraftChoice:
//   choice.type: "factionSelect" | "captainSelect" | "playerPick" |
//         "captainRolePick" | "playerOrCaptainRolePick" | "mapBan" | "mapPick"
//   choice.faction / captain / player / role / override / map: per type

type ChoiceMessage struct {
	Type     string `json:"type"`
	Faction  string `json:"faction,omitempty"`
	Captain  string `json:"captain,omitempty"`
	Player   string `json:"player,omitempty"`
	Role     string `json:"role,omitempty"`
	Override bool   `json:"override,omitempty"`
	Map      string `json:"map,omitempty"`
}

type ClientMessage struct {
	Type   string         `json:"type"`
	Choice *ChoiceMessage `json:"choice,omitempty"`
}

// Server -> Client
//
// draftStatusUpdated: full DraftStatus snapshot
// actionPosted: human-readable action line, optionally tied to a user
// error: reserved for transport-level problems; draft-level rejections
// stay silent and clients resync from the next snapshot

type ServerMessage struct {
	Type   string       `json:"type"`
	Status *DraftStatus `json:"status,omitempty"`
	User   string       `json:"user,omitempty"`
	Action string       `json:"action,omitempty"`
	Error  string       `json:"error,omitempty"`
}
