package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.trai.ch/zerr"
)

// Variant is the typed form of an entity payload for one resource.
type Variant interface {
	// Resource returns the table the variant belongs to.
	Resource() ResourceType
	// Fields returns the payload in its stored shape.
	Fields() Fields
	// Summary returns a one-line description for listings.
	Summary() string
}

// Diary is a diary entry.
type Diary struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Feeling string   `json:"feeling,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// Resource implements Variant.
func (Diary) Resource() ResourceType { return ResourceDiary }

// Fields implements Variant.
func (d Diary) Fields() Fields {
	f := Fields{"title": d.Title, "content": d.Content}
	if d.Feeling != "" {
		f["feeling"] = d.Feeling
	}
	if len(d.Tags) > 0 {
		f["tags"] = stringsToAny(d.Tags)
	}
	return f
}

// Summary implements Variant.
func (d Diary) Summary() string {
	if d.Feeling != "" {
		return fmt.Sprintf("%s (%s)", d.Title, d.Feeling)
	}
	return d.Title
}

// Recipe is a film-simulation recipe. The restricted string fields follow
// the camera's own notation, e.g. "DR-Auto", "up to ISO 6400".
type Recipe struct {
	Title                string `json:"title"`
	FilmSimulation       string `json:"film_simulation"`
	DynamicRange         string `json:"dynamic_range"`
	WhiteBalance         string `json:"wb"`
	ISO                  string `json:"iso"`
	ExposureCompensation string `json:"exposure_compensation"`
	ImageSrc             string `json:"img_src,omitempty"`
}

// Resource implements Variant.
func (Recipe) Resource() ResourceType { return ResourceRecipe }

// Fields implements Variant.
func (r Recipe) Fields() Fields {
	f := Fields{
		"title":                 r.Title,
		"film_simulation":       r.FilmSimulation,
		"dynamic_range":         r.DynamicRange,
		"wb":                    r.WhiteBalance,
		"iso":                   r.ISO,
		"exposure_compensation": r.ExposureCompensation,
	}
	if r.ImageSrc != "" {
		f["img_src"] = r.ImageSrc
	}
	return f
}

// Summary implements Variant.
func (r Recipe) Summary() string {
	return fmt.Sprintf("%s [%s, %s, %s]", r.Title, r.FilmSimulation, r.DynamicRange, r.ISO)
}

// Todo is a reminder-style todo item. ReminderTime is an RFC 3339 timestamp.
type Todo struct {
	Content      string   `json:"content"`
	Tags         []string `json:"tags"`
	ReminderTime string   `json:"reminder_time,omitempty"`
	Done         bool     `json:"done"`
}

// Resource implements Variant.
func (Todo) Resource() ResourceType { return ResourceTodo }

// Fields implements Variant.
func (t Todo) Fields() Fields {
	f := Fields{
		"content": t.Content,
		"tags":    stringsToAny(t.Tags),
		"done":    t.Done,
	}
	if t.ReminderTime != "" {
		f["reminder_time"] = t.ReminderTime
	}
	return f
}

// Summary implements Variant.
func (t Todo) Summary() string {
	mark := " "
	if t.Done {
		mark = "x"
	}
	s := fmt.Sprintf("[%s] %s", mark, t.Content)
	if len(t.Tags) > 0 {
		s += " #" + strings.Join(t.Tags, " #")
	}
	return s
}

// Expense is an expense tracker record. Amount is in minor currency units.
type Expense struct {
	Title    string `json:"title"`
	Amount   int64  `json:"amount"`
	Category string `json:"category"`
	Date     string `json:"date"`
}

// Resource implements Variant.
func (Expense) Resource() ResourceType { return ResourceExpense }

// Fields implements Variant.
func (e Expense) Fields() Fields {
	return Fields{
		"title":    e.Title,
		"amount":   e.Amount,
		"category": e.Category,
		"date":     e.Date,
	}
}

// Summary implements Variant.
func (e Expense) Summary() string {
	return fmt.Sprintf("%s %s %d (%s)", e.Date, e.Title, e.Amount, e.Category)
}

// User is an account profile.
type User struct {
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

// Resource implements Variant.
func (User) Resource() ResourceType { return ResourceUser }

// Fields implements Variant.
func (u User) Fields() Fields {
	return Fields{"email": u.Email, "nickname": u.Nickname}
}

// Summary implements Variant.
func (u User) Summary() string {
	return fmt.Sprintf("%s <%s>", u.Nickname, u.Email)
}

// DecodeVariant converts stored fields into the typed variant of resource.
// Unknown fields are ignored.
func DecodeVariant(resource ResourceType, fields Fields) (Variant, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, zerr.Wrap(err, ErrPayloadEncodeFailed.Error())
	}

	switch resource {
	case ResourceDiary:
		return decodeInto[Diary](data)
	case ResourceRecipe:
		return decodeInto[Recipe](data)
	case ResourceTodo:
		return decodeInto[Todo](data)
	case ResourceExpense:
		return decodeInto[Expense](data)
	case ResourceUser:
		return decodeInto[User](data)
	default:
		return nil, zerr.With(zerr.Wrap(ErrUnknownResource, "decode variant"), "resource", string(resource))
	}
}

func decodeInto[T Variant](data []byte) (Variant, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, zerr.Wrap(err, ErrPayloadDecodeFailed.Error())
	}
	return v, nil
}

func stringsToAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
