package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// ResourceType names a table of the remote store.
type ResourceType string

const (
	// ResourceDiary holds diary entries.
	ResourceDiary ResourceType = "diary"
	// ResourceRecipe holds film-development recipes.
	ResourceRecipe ResourceType = "recipes"
	// ResourceTodo holds reminder-style todos.
	ResourceTodo ResourceType = "todos"
	// ResourceExpense holds expense records.
	ResourceExpense ResourceType = "expense_tracker"
	// ResourceUser holds account profiles.
	ResourceUser ResourceType = "users"
)

var resourceAliases = map[string]ResourceType{
	"diary":           ResourceDiary,
	"diaries":         ResourceDiary,
	"recipe":          ResourceRecipe,
	"recipes":         ResourceRecipe,
	"todo":            ResourceTodo,
	"todos":           ResourceTodo,
	"expense":         ResourceExpense,
	"expenses":        ResourceExpense,
	"expense_tracker": ResourceExpense,
	"user":            ResourceUser,
	"users":           ResourceUser,
}

// Resources returns every known resource type in a stable order.
func Resources() []ResourceType {
	return []ResourceType{ResourceDiary, ResourceRecipe, ResourceTodo, ResourceExpense, ResourceUser}
}

// ParseResource resolves a table name or one of its singular/plural aliases.
func ParseResource(s string) (ResourceType, error) {
	r, ok := resourceAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", zerr.With(zerr.Wrap(ErrUnknownResource, "parse resource"), "resource", s)
	}
	return r, nil
}

// Valid reports whether r is a known resource type.
func (r ResourceType) Valid() bool {
	switch r {
	case ResourceDiary, ResourceRecipe, ResourceTodo, ResourceExpense, ResourceUser:
		return true
	default:
		return false
	}
}

// Label returns the human-readable singular name used in notifications.
func (r ResourceType) Label() string {
	switch r {
	case ResourceDiary:
		return "Diary"
	case ResourceRecipe:
		return "Recipe"
	case ResourceTodo:
		return "Todo"
	case ResourceExpense:
		return "Expense"
	case ResourceUser:
		return "User"
	default:
		return string(r)
	}
}

// Key identifies a single remote entity.
type Key struct {
	Resource ResourceType
	ID       string
}

// NewKey creates a key for the given resource and id.
func NewKey(resource ResourceType, id string) Key {
	return Key{Resource: resource, ID: id}
}

// ParseKey parses the "<resource>/<id>" form produced by Key.String.
func ParseKey(s string) (Key, error) {
	resource, id, ok := strings.Cut(s, "/")
	if !ok || id == "" {
		return Key{}, zerr.With(zerr.Wrap(ErrInvalidKey, "parse key"), "key", s)
	}
	r, err := ParseResource(resource)
	if err != nil {
		return Key{}, zerr.With(err, "key", s)
	}
	return Key{Resource: r, ID: id}, nil
}

// String returns the "<resource>/<id>" form of the key.
func (k Key) String() string {
	return string(k.Resource) + "/" + k.ID
}

// IsZero reports whether the key is unset.
func (k Key) IsZero() bool {
	return k.Resource == "" && k.ID == ""
}
