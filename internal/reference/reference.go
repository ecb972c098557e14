// Package reference хранит справочники пользователей и категорий
package reference

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed reference.yml
var defaultDocument []byte

type User struct {
	ID    string `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name"`
	Color string `yaml:"color" json:"color"`
}

type Category struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
	Color string `yaml:"color" json:"color"`
}

type Data struct {
	AllToken        string     `yaml:"all_token"`
	DefaultUser     string     `yaml:"default_user"`
	DefaultCategory string     `yaml:"default_category"`
	Users           []User     `yaml:"users"`
	Categories      []Category `yaml:"categories"`
}

// Default возвращает встроенные справочники
func Default() *Data {
	data, err := Parse(defaultDocument)
	if err != nil {
		panic(fmt.Sprintf("встроенный reference.yml повреждён: %v", err))
	}
	return data
}

// Load читает справочники из файла, пустой путь означает встроенные
func Load(path string) (*Data, error) {
	if path == "" {
		return Default(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не могу открыть %s: %w", path, err)
	}

	data, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
	}
	return data, nil
}

func Parse(raw []byte) (*Data, error) {
	var data Data
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(&data); err != nil {
		return nil, err
	}

	if err := data.validate(); err != nil {
		return nil, err
	}
	return &data, nil
}

func (d *Data) validate() error {
	if d.AllToken == "" {
		return fmt.Errorf("all_token не задан")
	}
	if len(d.Users) == 0 {
		return fmt.Errorf("список пользователей пуст")
	}
	if len(d.Categories) == 0 {
		return fmt.Errorf("список категорий пуст")
	}

	users := make(map[string]bool, len(d.Users))
	for _, u := range d.Users {
		if u.ID == "" {
			return fmt.Errorf("пользователь без id")
		}
		if u.ID == d.AllToken {
			return fmt.Errorf("id пользователя %q совпадает с all_token", u.ID)
		}
		if users[u.ID] {
			return fmt.Errorf("пользователь %q указан дважды", u.ID)
		}
		users[u.ID] = true
	}
	if !users[d.DefaultUser] {
		return fmt.Errorf("default_user %q отсутствует в списке пользователей", d.DefaultUser)
	}

	categories := make(map[string]bool, len(d.Categories))
	for _, c := range d.Categories {
		if c.ID == "" {
			return fmt.Errorf("категория без id")
		}
		if categories[c.ID] {
			return fmt.Errorf("категория %q указана дважды", c.ID)
		}
		categories[c.ID] = true
	}
	if !categories[d.DefaultCategory] {
		return fmt.Errorf("default_category %q отсутствует в списке категорий", d.DefaultCategory)
	}
	return nil
}

// UserFilter переводит пользовательский выбор в фильтр хранилища:
// пустая строка и all_token означают "без фильтра"
func (d *Data) UserFilter(userID string) string {
	if userID == d.AllToken {
		return ""
	}
	return userID
}

// HasUser нужен только для подсказок, хранилище принимает любой user_id
func (d *Data) HasUser(id string) bool {
	for _, u := range d.Users {
		if u.ID == id {
			return true
		}
	}
	return false
}
