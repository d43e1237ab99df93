package domain

import "context"

// Member is a guild member eligible to receive a share.
type Member struct {
	ID      string
	GuildID string
	Name    string
}

// CheckMembership verifies that every id in ids resolved to a member of
// guildID. members is whatever the roster lookup returned; missing ids and
// members of another guild are both reported as not found.
func CheckMembership(guildID string, ids []string, members []*Member) (map[string]*Member, error) {
	byID := make(map[string]*Member, len(members))
	for _, m := range members {
		if m.GuildID == guildID {
			byID[m.ID] = m
		}
	}

	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, ErrMemberNotFound.WithField(id, "not a member of this guild")
		}
	}

	return byID, nil
}

// Actor identifies who performed an operation.
type Actor struct {
	ID   string
	Name string
}

type actorKey struct{}

// ContextWithActor returns a copy of ctx carrying actor.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor stored in ctx, if any.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	if !ok || actor.ID == "" {
		return Actor{}, false
	}
	return actor, true
}
