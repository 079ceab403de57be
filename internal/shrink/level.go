package shrink

import "fmt"

// Level is the shrink aggressiveness, ordered none < soft < hard < extreme.
type Level int

const (
	// LevelNone keeps everything (modulo whitespace normalization at
	// declaration boundaries).
	LevelNone Level = iota
	// LevelSoft keeps signatures, replaces method bodies with a placeholder.
	LevelSoft
	// LevelHard drops methods entirely, keeps fields.
	LevelHard
	// LevelExtreme additionally folds fields into summary comments.
	LevelExtreme
)

var levelNames = map[Level]string{
	LevelNone:    "none",
	LevelSoft:    "soft",
	LevelHard:    "hard",
	LevelExtreme: "extreme",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ParseLevel parses a level name.
func ParseLevel(s string) (Level, error) {
	for l, name := range levelNames {
		if name == s {
			return l, nil
		}
	}
	return LevelNone, fmt.Errorf("invalid shrink level %q (want none, soft, hard or extreme)", s)
}
