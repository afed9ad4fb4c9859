package model

// EventType classifies an inbound chat update.
type EventType string

const (
	EventSticker  EventType = "sticker"
	EventPhoto    EventType = "photo"
	EventVideo    EventType = "video"
	EventDocument EventType = "document"
	EventVoice    EventType = "voice"
	EventText     EventType = "text"
	EventOther    EventType = "other"
)

// Event is a transport-agnostic view of an inbound update. The transport
// layer fills in the payload flags; classification happens here so every
// transport applies the same precedence.
type Event struct {
	UserID      int64
	ChatID      int64
	HasSticker  bool
	HasPhoto    bool
	HasVideo    bool
	HasDocument bool
	HasVoice    bool
	HasText     bool
	Text        string
	Private     bool
	Command     string // bot command name without the slash, if any
	Username    string
	FirstName   string
	LastName    string
}

// Classify maps an event to its type. Precedence is fixed:
// sticker > photo > video > document > voice > text > other.
// First match wins; an event carrying both a sticker and a caption is a
// sticker, never text.
func Classify(e Event) EventType {
	switch {
	case e.HasSticker:
		return EventSticker
	case e.HasPhoto:
		return EventPhoto
	case e.HasVideo:
		return EventVideo
	case e.HasDocument:
		return EventDocument
	case e.HasVoice:
		return EventVoice
	case e.HasText:
		return EventText
	default:
		return EventOther
	}
}

// Countable reports whether events of this type increment an activity
// counter. Stickers count toward StickerCount; every other content
// type counts toward MessageCount. Commands, joins and unknown payloads
// ("other") only touch the last-seen timestamp.
func (t EventType) Countable() bool {
	return t != EventOther
}
