// Package directory resolves organization user ids to names and emails.
package directory

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/theirongolddev/orgburn/internal/model"
	"github.com/theirongolddev/orgburn/internal/store"

	"github.com/tidwall/gjson"
)

// UnknownUserName labels records whose user cannot be identified at all.
const UnknownUserName = "Unknown User"

// Directory is an ordered set of organization users.
type Directory struct {
	users  []model.User
	byID   map[string]int
	byName map[string]int
}

// New builds a directory. For duplicate ids or names the first entry wins.
func New(users []model.User) *Directory {
	d := &Directory{
		users:  make([]model.User, len(users)),
		byID:   make(map[string]int, len(users)),
		byName: make(map[string]int, len(users)),
	}
	copy(d.users, users)
	for i, u := range d.users {
		if _, ok := d.byID[u.ID]; !ok && u.ID != "" {
			d.byID[u.ID] = i
		}
		if _, ok := d.byName[u.Name]; !ok && u.Name != "" {
			d.byName[u.Name] = i
		}
	}
	return d
}

// Users returns all entries in directory order.
func (d *Directory) Users() []model.User {
	if d == nil {
		return nil
	}
	out := make([]model.User, len(d.users))
	copy(out, d.users)
	return out
}

// Len returns the number of users.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.users)
}

// Lookup returns the user with the given id.
func (d *Directory) Lookup(id string) (model.User, bool) {
	if d == nil {
		return model.User{}, false
	}
	i, ok := d.byID[id]
	if !ok {
		return model.User{}, false
	}
	return d.users[i], true
}

// NameForID returns the name of the user with the given id.
func (d *Directory) NameForID(id string) (string, bool) {
	u, ok := d.Lookup(id)
	if !ok {
		return "", false
	}
	return u.Name, true
}

// IDForName returns the id of the first user with the given name.
func (d *Directory) IDForName(name string) (string, bool) {
	if d == nil {
		return "", false
	}
	i, ok := d.byName[name]
	if !ok {
		return "", false
	}
	return d.users[i].ID, true
}

// DisplayName returns the user's name, or an Unknown label carrying the
// first eight characters of the id.
func (d *Directory) DisplayName(id string) string {
	if name, ok := d.NameForID(id); ok && name != "" {
		return name
	}
	return UnknownLabel(id)
}

// UnknownLabel formats the label for an id missing from the directory.
func UnknownLabel(id string) string {
	if id == "" || id == model.UnknownUser {
		return UnknownUserName
	}
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("Unknown (%s...)", short)
}

// LoadSnapshot reads a userinfo snapshot: a JSON array of users, or an object
// holding one under "data". Entries that are not objects are skipped.
func LoadSnapshot(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("directory: %s is not valid JSON", path)
	}

	list := gjson.ParseBytes(data)
	if !list.IsArray() {
		list = list.Get("data")
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("directory: %s holds no user list", path)
	}

	var users []model.User
	list.ForEach(func(_, v gjson.Result) bool {
		if v.IsObject() {
			users = append(users, model.User{
				ID:      v.Get("id").String(),
				Name:    v.Get("name").String(),
				Email:   v.Get("email").String(),
				Role:    v.Get("role").String(),
				AddedAt: v.Get("added_at").Int(),
			})
		}
		return true
	})
	return New(users), nil
}

// SaveSnapshot writes users as an indented JSON array.
func SaveSnapshot(path string, users []model.User) error {
	if users == nil {
		users = []model.User{}
	}
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("directory: encoding snapshot: %w", err)
	}
	if err := store.WriteFileAtomic(path, append(data, '\n')); err != nil {
		return fmt.Errorf("directory: saving snapshot: %w", err)
	}
	return nil
}
