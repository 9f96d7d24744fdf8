package models

import "sort"

// DefaultAnnouncement is used when /assign is called without a message
const DefaultAnnouncement = "{user_mention} got the {role_name} role!! 🎉"

// RoleAssignments maps a channel ID to the ordered list of templates posted there
type RoleAssignments map[string][]string

// GuildAssignments maps a role ID to the channels that announce it
type GuildAssignments map[string]RoleAssignments

// Assignments maps a guild ID to its assignments
type Assignments map[string]GuildAssignments

// Clone returns a deep copy of the role assignments
func (r RoleAssignments) Clone() RoleAssignments {
	if r == nil {
		return nil
	}
	out := make(RoleAssignments, len(r))
	for channelID, templates := range r {
		out[channelID] = append([]string(nil), templates...)
	}
	return out
}

// ChannelIDs returns the channel IDs in ascending snowflake order
func (r RoleAssignments) ChannelIDs() []string {
	return sortedSnowflakes(r)
}

// Clone returns a deep copy of the guild assignments
func (g GuildAssignments) Clone() GuildAssignments {
	if g == nil {
		return nil
	}
	out := make(GuildAssignments, len(g))
	for roleID, channels := range g {
		out[roleID] = channels.Clone()
	}
	return out
}

// RoleIDs returns the role IDs in ascending snowflake order
func (g GuildAssignments) RoleIDs() []string {
	return sortedSnowflakes(g)
}

// Count returns the total number of templates configured in the guild
func (g GuildAssignments) Count() int {
	total := 0
	for _, channels := range g {
		for _, templates := range channels {
			total += len(templates)
		}
	}
	return total
}

// Clone returns a deep copy of every guild's assignments
func (a Assignments) Clone() Assignments {
	out := make(Assignments, len(a))
	for guildID, roles := range a {
		out[guildID] = roles.Clone()
	}
	return out
}

// GuildIDs returns the guild IDs in ascending snowflake order
func (a Assignments) GuildIDs() []string {
	return sortedSnowflakes(a)
}

// sortedSnowflakes orders decimal IDs numerically without parsing them:
// a shorter decimal string is always the smaller number.
func sortedSnowflakes[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}
