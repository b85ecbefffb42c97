package entity

// GuildChannel is the slice of provider channel state the invite registry
// needs to pick a channel for invite creation. Channels arrive in the guild's
// display order.
type GuildChannel struct {
	ID     string
	Text   bool
	System bool
}
