package domain

import "time"

// Translation statuses. The first four mirror the Qt Linguist translation
// types; machine marks provider output awaiting review.
const (
	StatusFinished   = "finished"
	StatusUnfinished = "unfinished"
	StatusObsolete   = "obsolete"
	StatusVanished   = "vanished"
	StatusMachine    = "machine"
)

type Translation struct {
	ID         int64     `json:"id"`
	UnitID     int64     `json:"unit_id"`
	Locale     string    `json:"locale"`
	Text       string    `json:"text"`
	Forms      []string  `json:"forms,omitempty"`
	Status     string    `json:"status"`
	ProviderID *int64    `json:"provider_id"`
	Confidence *float64  `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Active reports whether the translation should still be shipped.
func (t *Translation) Active() bool {
	return t.Status != StatusObsolete && t.Status != StatusVanished
}

// TranslationType maps a stored status onto the .ts translation type.
func TranslationType(status string) MessageType {
	switch status {
	case StatusUnfinished, StatusMachine:
		return TypeUnfinished
	case StatusObsolete:
		return TypeObsolete
	case StatusVanished:
		return TypeVanished
	default:
		return TypeFinished
	}
}

// StatusFromType is the inverse of TranslationType.
func StatusFromType(t MessageType) string {
	switch t {
	case TypeUnfinished:
		return StatusUnfinished
	case TypeObsolete:
		return StatusObsolete
	case TypeVanished:
		return StatusVanished
	default:
		return StatusFinished
	}
}
