package players

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
	"strings"
)

// PlayerAuthID resolves the identifier of a player reference. Bare strings,
// numbers and booleans are identifiers themselves; objects are probed field
// by field in a fixed priority order and the first non-null value wins, so a
// nested object in that field resolves to ("", false) rather than falling
// through. Nil input resolves to ("", false).
func PlayerAuthID(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	if id, ok := primitiveID(v); ok {
		return id, true
	}
	m, ok := asMap(v)
	if !ok {
		return "", false
	}
	for _, field := range idFields {
		value, found := lookup(m, field)
		if !found {
			continue
		}
		return primitiveID(value)
	}
	return "", false
}

// PlayerDisplayName returns the first non-empty name field of a player
// reference, or DefaultDisplayName.
func PlayerDisplayName(v any) string {
	m, ok := asMap(v)
	if !ok {
		return DefaultDisplayName
	}
	for _, field := range nameFields {
		value, found := lookup(m, field)
		if !found {
			continue
		}
		if name, ok := value.(string); ok && strings.TrimSpace(name) != "" {
			return name
		}
	}
	return DefaultDisplayName
}

// DecodePlayer converts a player reference into a Player. Unlike the
// lenient helpers it fails when no identifier can be resolved.
func DecodePlayer(v any) (Player, error) {
	if _, ok := PlayerAuthID(v); !ok {
		return Player{}, &DecodeError{Value: v, Err: ErrNoIdentifier}
	}
	return normalizePlayer(v, TeamNone), nil
}

// NormalizeMatchPlayers splits the players of a match-like payload into
// teams. Explicit team arrays win; otherwise a flat list of players (the
// payload itself, or its "players" field) is balanced between the sides.
func NormalizeMatchPlayers(raw any) Teams {
	if m, ok := asMap(raw); ok {
		listA, okA := firstList(m, teamAKeys)
		listB, okB := firstList(m, teamBKeys)
		if okA || okB {
			return Teams{
				A: NormalizeTeam(listA, TeamA),
				B: NormalizeTeam(listB, TeamB),
			}
		}
		if list, ok := toList(m["players"]); ok {
			return balance(list)
		}
		return Teams{}
	}
	if list, ok := toList(raw); ok {
		return balance(list)
	}
	return Teams{}
}

// NormalizeTeam normalizes a list of player references. A forced team takes
// precedence over any team field the players carry.
func NormalizeTeam(raw any, forced Team) []Player {
	list, _ := toList(raw)
	team := make([]Player, 0, len(list))
	for _, item := range list {
		if item == nil {
			continue
		}
		team = append(team, normalizePlayer(item, forced))
	}
	return team
}

// FormatTeamNames joins the names of a team, showing the current user as "You".
func FormatTeamNames(team []Player, currentUserID string) string {
	names := make([]string, 0, len(team))
	for _, p := range team {
		if currentUserID != "" && p.AuthID == currentUserID {
			names = append(names, "You")
			continue
		}
		names = append(names, p.Username)
	}
	return strings.Join(names, " & ")
}

// ContainsID reports whether a team has a player with the given identifier.
func ContainsID(team []Player, id string) bool {
	if id == "" {
		return false
	}
	for _, p := range team {
		if p.AuthID == id {
			return true
		}
	}
	return false
}

// Map returns the original fields with the canonical auth_id, username and
// team added.
func (p Player) Map() map[string]any {
	m := make(map[string]any, len(p.Raw)+3)
	maps.Copy(m, p.Raw)
	m["auth_id"] = p.AuthID
	m["username"] = p.Username
	if p.Team != TeamNone {
		m["team"] = string(p.Team)
	}
	return m
}

// MarshalJSON encodes the player in its canonical map form.
func (p Player) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Map())
}

func normalizePlayer(v any, forced Team) Player {
	id, _ := PlayerAuthID(v)
	p := Player{
		AuthID:   id,
		Username: PlayerDisplayName(v),
		Team:     forced,
	}
	if m, ok := asMap(v); ok {
		p.Raw = m
		if p.Team == TeamNone {
			p.Team = teamField(m)
		}
	}
	return p
}

func balance(list []any) Teams {
	var teams Teams
	for _, item := range list {
		if item == nil {
			continue
		}
		p := normalizePlayer(item, TeamNone)
		if p.Team == TeamNone {
			if len(teams.A) <= len(teams.B) {
				p.Team = TeamA
			} else {
				p.Team = TeamB
			}
		}
		if p.Team == TeamA {
			teams.A = append(teams.A, p)
		} else {
			teams.B = append(teams.B, p)
		}
	}
	return teams
}

func teamField(m map[string]any) Team {
	for _, field := range teamFields {
		if team := ParseTeam(m[field]); team != TeamNone {
			return team
		}
	}
	return TeamNone
}

// ParseTeam maps the team tags used across endpoints ("A", 1, "1", "B", 2,
// "2") to a Team.
func ParseTeam(v any) Team {
	switch x := v.(type) {
	case Team:
		return x
	case string:
		switch strings.ToUpper(strings.TrimSpace(x)) {
		case "A", "1":
			return TeamA
		case "B", "2":
			return TeamB
		}
	case json.Number:
		return ParseTeam(x.String())
	case float64:
		return ParseTeam(strconv.FormatFloat(x, 'f', -1, 64))
	case int:
		return ParseTeam(strconv.Itoa(x))
	}
	return TeamNone
}

func lookup(m map[string]any, field string) (any, bool) {
	if nested, ok := strings.CutPrefix(field, "user."); ok {
		user, isMap := asMap(m["user"])
		if !isMap {
			return nil, false
		}
		v := user[nested]
		return v, v != nil
	}
	v := m[field]
	return v, v != nil
}

func firstList(m map[string]any, keys []string) (any, bool) {
	for _, key := range keys {
		if _, ok := toList(m[key]); ok {
			return m[key], true
		}
	}
	return nil, false
}

func primitiveID(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case int, int32, int64, uint, uint32, uint64:
		return fmt.Sprint(x), true
	case bool:
		return strconv.FormatBool(x), true
	}
	return "", false
}

func asMap(v any) (map[string]any, bool) {
	switch x := v.(type) {
	case map[string]any:
		return x, x != nil
	case Player:
		return x.Map(), true
	case *Player:
		if x == nil {
			return nil, false
		}
		return x.Map(), true
	}
	return nil, false
}

func toList(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return x, true
	case []map[string]any:
		list := make([]any, len(x))
		for i, item := range x {
			list[i] = item
		}
		return list, true
	case []string:
		list := make([]any, len(x))
		for i, item := range x {
			list[i] = item
		}
		return list, true
	case []Player:
		list := make([]any, len(x))
		for i, item := range x {
			list[i] = item
		}
		return list, true
	}
	return nil, false
}
