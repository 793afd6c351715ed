package data

import "gorm.io/gorm"

// Setting is one row of the settings table.
type Setting struct {
	ID     uint8  `gorm:"primaryKey"`
	Name   string `gorm:"size:32;not null"`
	Value  string `gorm:"type:text;not null"`
	Active uint8  `gorm:"not null"`
}

// Settings is a read-only copy of the active settings rows.
type Settings struct {
	values map[string]string
}

// NewSettings builds a Settings from a plain map.
func NewSettings(values map[string]string) *Settings {
	s := &Settings{values: make(map[string]string, len(values))}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

// LoadSettings reads every active setting from db.
func LoadSettings(db *gorm.DB) (*Settings, error) {
	var rows []Setting
	if err := db.Where("active = ?", 1).Find(&rows).Error; err != nil {
		return nil, err
	}
	return settingsFromRows(rows), nil
}

func settingsFromRows(rows []Setting) *Settings {
	s := &Settings{values: make(map[string]string, len(rows))}
	for _, r := range rows {
		if r.Active == 0 {
			continue
		}
		s.values[r.Name] = r.Value
	}
	return s
}

// Get returns the named setting or "". A nil Settings has no values.
func (s *Settings) Get(name string) string {
	if s == nil {
		return ""
	}
	return s.values[name]
}
