package ingest

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"attendance-ingest-backend/internal/model"
	"attendance-ingest-backend/internal/timefmt"
)

// PushMarker is the path substring the terminal uses for face-verification
// pushes. Everything else POSTed by the device is acknowledged but ignored.
const PushMarker = "PersonVerification"

// The terminal is sloppy about types: MatchPersonID arrives as a string or a
// number depending on firmware, and Timestamp may be missing entirely. Both
// are decoded as raw JSON and coerced afterwards.
type wirePersonInfo struct {
	PersonName string `json:"PersonName"`
}

type wireMatchInfo struct {
	LibID               int             `json:"LibID"`
	VerifyMode          int             `json:"VerifyMode"`
	MatchFaceConfidence float64         `json:"MatchFaceConfidence"`
	MatchPersonID       json.RawMessage `json:"MatchPersonID"`
	MatchPersonInfo     wirePersonInfo  `json:"MatchPersonInfo"`
}

type wirePush struct {
	Timestamp      json.RawMessage `json:"Timestamp"`
	LibMatInfoList []wireMatchInfo `json:"LibMatInfoList"`
}

// Match is the first library match extracted from a verification push.
type Match struct {
	PersonName string
	PersonID   string
	Confidence float64
	LibID      int
	VerifyMode int
}

// Push is a decoded face-verification push. Match is nil when the payload
// carried no library matches.
type Push struct {
	EventAt      time.Time
	HasTimestamp bool
	Match        *Match
}

// ParsePush decodes a raw device push body. It returns an error only when the
// body is not valid JSON; a well-formed body without matches yields a Push
// with a nil Match.
func ParsePush(raw []byte) (*Push, error) {
	var wire wirePush
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, err
	}

	push := &Push{}
	if sec, ok := numericValue(wire.Timestamp); ok {
		push.EventAt = time.Unix(int64(sec), 0).UTC()
		push.HasTimestamp = true
	}

	if len(wire.LibMatInfoList) > 0 {
		// Only the first match is used; the terminal reports at most one
		// person per push in practice.
		first := wire.LibMatInfoList[0]
		push.Match = &Match{
			PersonName: first.MatchPersonInfo.PersonName,
			PersonID:   stringValue(first.MatchPersonID),
			Confidence: first.MatchFaceConfidence,
			LibID:      first.LibID,
			VerifyMode: first.VerifyMode,
		}
	}
	return push, nil
}

// BuildEvent turns a decoded push into a stored AccessEvent, defaulting every
// optional field explicitly. receivedAt is used when the device sent no
// usable timestamp.
func BuildEvent(push *Push, receivedAt time.Time, formatter *timefmt.Formatter) model.AccessEvent {
	eventAt := receivedAt.UTC()
	if push.HasTimestamp {
		eventAt = push.EventAt
	}

	name := push.Match.PersonName
	if name == "" {
		name = "Unknown"
	}

	return model.AccessEvent{
		EventUID:   uuid.New(),
		PersonName: name,
		PersonID:   push.Match.PersonID,
		Confidence: push.Match.Confidence,
		EventAt:    eventAt,
		Date:       formatter.DateKey(eventAt),
		Time:       formatter.DisplayTimestamp(eventAt),
		LibID:      push.Match.LibID,
		VerifyMode: push.Match.VerifyMode,
	}
}

// numericValue coerces a raw JSON value into a float, accepting both bare
// numbers and numeric strings.
func numericValue(raw json.RawMessage) (float64, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, false
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// stringValue coerces a raw JSON value into a string, stripping quotes from
// string literals and keeping the literal text of numbers.
func stringValue(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	if strings.HasPrefix(s, `"`) {
		var unquoted string
		if err := json.Unmarshal(raw, &unquoted); err == nil {
			return unquoted
		}
		return strings.Trim(s, `"`)
	}
	return s
}
