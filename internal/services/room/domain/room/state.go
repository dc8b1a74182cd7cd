package room

import "sort"

// Room is the aggregate state of one estimation session.
type Room struct {
	ID            string
	Created       bool
	Users         map[string]User
	Stories       map[string]Story
	SelectedStory string
	AutoReveal    bool
	CardConfig    []Card
}

// User is a member of a room.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username,omitempty"`
	Visitor      bool   `json:"visitor,omitempty"`
	Excluded     bool   `json:"excluded,omitempty"`
	Disconnected bool   `json:"disconnected,omitempty"`
}

// Story is a work item estimated by the room.
type Story struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Estimations map[string]float64 `json:"estimations"`
	CreatedAt   int64              `json:"createdAt"`
	Revealed    bool               `json:"revealed,omitempty"`
	Trashed     bool               `json:"trashed,omitempty"`
}

// Blank returns the state of a room that does not exist yet.
func Blank(roomID string, deck []Card) Room {
	return Room{ID: roomID, CardConfig: cloneCards(deck)}
}

// Clone returns a deep copy so callers never alias stored maps.
func (r Room) Clone() Room {
	out := r
	out.Users = cloneUsers(r.Users)
	out.Stories = cloneStories(r.Stories)
	out.CardConfig = cloneCards(r.CardConfig)
	return out
}

// HasUser reports whether userID is a member of the room.
func (r Room) HasUser(userID string) bool {
	_, ok := r.Users[userID]
	return ok
}

// StoryIDs returns story ids ordered by creation time, then id.
func (r Room) StoryIDs() []string {
	ids := make([]string, 0, len(r.Stories))
	for id := range r.Stories {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := r.Stories[ids[i]], r.Stories[ids[j]]
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt < b.CreatedAt
		}
		return a.ID < b.ID
	})
	return ids
}

// ActiveStoryIDs returns the ordered ids of stories that are not trashed.
func (r Room) ActiveStoryIDs() []string {
	var active []string
	for _, id := range r.StoryIDs() {
		if !r.Stories[id].Trashed {
			active = append(active, id)
		}
	}
	return active
}

// EstimatingUserIDs returns users expected to estimate: connected, not
// visitors, not excluded.
func (r Room) EstimatingUserIDs() []string {
	var ids []string
	for id, user := range r.Users {
		if user.Visitor || user.Excluded || user.Disconnected {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ConnectedUsers counts users that still hold a connection.
func (r Room) ConnectedUsers() int {
	count := 0
	for _, user := range r.Users {
		if !user.Disconnected {
			count++
		}
	}
	return count
}

func cloneUsers(in map[string]User) map[string]User {
	if in == nil {
		return nil
	}
	out := make(map[string]User, len(in))
	for id, user := range in {
		out[id] = user
	}
	return out
}

func cloneStories(in map[string]Story) map[string]Story {
	if in == nil {
		return nil
	}
	out := make(map[string]Story, len(in))
	for id, story := range in {
		out[id] = story.clone()
	}
	return out
}

func (s Story) clone() Story {
	out := s
	out.Estimations = make(map[string]float64, len(s.Estimations))
	for userID, value := range s.Estimations {
		out.Estimations[userID] = value
	}
	return out
}

func cloneCards(in []Card) []Card {
	if in == nil {
		return nil
	}
	return append([]Card(nil), in...)
}
