package models

// Progress is the typed view of a progress record.
type Progress struct {
	EpisodeID string
	Position  float64
	Duration  float64
	Completed bool
}

// Fields converts progress to a record payload.
func (p Progress) Fields() Fields {
	f := Fields{}
	f.Set(FieldEpisodeID, p.EpisodeID)
	f.Set(FieldPosition, p.Position)
	f.Set(FieldDuration, p.Duration)
	f.Set(FieldCompleted, p.Completed)
	return f
}

// ProgressOf reads the typed progress view of a record.
func ProgressOf(r *Record) Progress {
	return Progress{
		EpisodeID: r.Fields.String(FieldEpisodeID),
		Position:  r.Fields.Float(FieldPosition),
		Duration:  r.Fields.Float(FieldDuration),
		Completed: r.Fields.Bool(FieldCompleted),
	}
}

// Comment is the typed view of a comment record.
type Comment struct {
	Reactions    map[string]int
	EpisodeID    string
	Text         string
	TimestampSec float64
}

// Fields converts the comment to a record payload. Reactions are server-side
// related data and are not part of the pushed payload.
func (c Comment) Fields() Fields {
	f := Fields{}
	f.Set(FieldEpisodeID, c.EpisodeID)
	f.Set(FieldText, c.Text)
	f.Set(FieldTimestampSec, c.TimestampSec)
	return f
}

// CommentOf reads the typed comment view of a record.
func CommentOf(r *Record) Comment {
	c := Comment{
		EpisodeID:    r.Fields.String(FieldEpisodeID),
		Text:         r.Fields.String(FieldText),
		TimestampSec: r.Fields.Float(FieldTimestampSec),
	}
	if raw, ok := r.Fields[FieldReactions].(map[string]any); ok {
		c.Reactions = make(map[string]int, len(raw))
		for emoji, n := range raw {
			c.Reactions[emoji] = int(Fields{"n": n}.Float("n"))
		}
	}
	return c
}

// Profile is the typed view of a profile record.
type Profile struct {
	DisplayName string
	AvatarURL   string
	Interests   []string
	Onboarded   bool
}

// Fields converts the profile to a record payload.
func (p Profile) Fields() Fields {
	f := Fields{}
	f.Set(FieldDisplayName, p.DisplayName)
	f.Set(FieldAvatarURL, p.AvatarURL)
	f.Set(FieldOnboarded, p.Onboarded)
	interests := make([]any, 0, len(p.Interests))
	for _, s := range p.Interests {
		interests = append(interests, s)
	}
	f.Set(FieldInterests, interests)
	return f
}

// ProfileOf reads the typed profile view of a record.
func ProfileOf(r *Record) Profile {
	return Profile{
		DisplayName: r.Fields.String(FieldDisplayName),
		AvatarURL:   r.Fields.String(FieldAvatarURL),
		Interests:   r.Fields.Strings(FieldInterests),
		Onboarded:   r.Fields.Bool(FieldOnboarded),
	}
}
