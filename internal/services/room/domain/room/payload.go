package room

// RoomCreatedPayload captures the payload for roomCreated events.
type RoomCreatedPayload struct {
	CardConfig []Card `json:"cardConfig,omitempty"`
}

// JoinRoomPayload captures the payload for joinRoom commands.
type JoinRoomPayload struct {
	Username string `json:"username,omitempty"`
	Visitor  bool   `json:"visitor,omitempty"`
}

// JoinedRoomPayload captures the payload for joinedRoom events. It carries a
// snapshot of the room so the joining client can bootstrap from it.
type JoinedRoomPayload struct {
	UserID        string           `json:"userId"`
	Users         map[string]User  `json:"users"`
	Stories       map[string]Story `json:"stories"`
	SelectedStory string           `json:"selectedStory,omitempty"`
	AutoReveal    bool             `json:"autoReveal,omitempty"`
	CardConfig    []Card           `json:"cardConfig,omitempty"`
}

// LeaveRoomPayload captures the payload for leaveRoom commands.
type LeaveRoomPayload struct {
	ConnectionLost bool `json:"connectionLost,omitempty"`
}

// UserRefPayload captures payloads addressing a single user: kick commands and
// leftRoom, connectionLost and kicked events.
type UserRefPayload struct {
	UserID string `json:"userId"`
}

// SetUsernamePayload captures the payload for setUsername commands and usernameSet events.
type SetUsernamePayload struct {
	Username string `json:"username"`
}

// CardConfigPayload captures the payload for setCardConfig commands and cardConfigSet events.
type CardConfigPayload struct {
	Cards []Card `json:"cards"`
}

// AddStoryPayload captures the payload for addStory commands.
type AddStoryPayload struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// StoryAddedPayload captures the payload for storyAdded events.
type StoryAddedPayload struct {
	StoryID     string             `json:"storyId"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Estimations map[string]float64 `json:"estimations"`
	CreatedAt   int64              `json:"createdAt"`
}

// ChangeStoryPayload captures the payload for changeStory commands and storyChanged events.
type ChangeStoryPayload struct {
	StoryID     string `json:"storyId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// StoryRefPayload captures payloads that only address a story.
type StoryRefPayload struct {
	StoryID string `json:"storyId"`
}

// EstimatePayload captures the payload for giveStoryEstimate commands and
// storyEstimateGiven events.
type EstimatePayload struct {
	StoryID string  `json:"storyId"`
	Value   float64 `json:"value"`
}

// RevealedPayload captures the payload for revealed events.
type RevealedPayload struct {
	StoryID  string `json:"storyId"`
	Manually bool   `json:"manually"`
}

// EmptyPayload captures commands and events without fields.
type EmptyPayload struct{}
