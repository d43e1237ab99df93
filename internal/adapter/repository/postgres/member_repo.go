package postgres

import (
	"context"
	"fmt"

	"github.com/iho/guildledger/internal/domain"
	"github.com/iho/guildledger/internal/usecase"
)

const fetchMembersSQL = `
	SELECT id, guild_id, name
	FROM members
	WHERE guild_id = $1 AND id = ANY($2)`

// MemberRepository implements usecase.MemberRepository.
// Every query runs inside the caller's transaction.
type MemberRepository struct{}

// NewMemberRepository creates a new MemberRepository.
func NewMemberRepository() *MemberRepository {
	return &MemberRepository{}
}

// FetchMembers returns the members of guildID among ids. Unknown ids and
// members of other guilds are simply absent from the result.
func (r *MemberRepository) FetchMembers(ctx context.Context, tx usecase.Transaction, guildID string, ids []string) ([]*domain.Member, error) {
	q, err := pgxTx(tx)
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, fetchMembersSQL, guildID, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch members: %w", err)
	}
	defer rows.Close()

	members := make([]*domain.Member, 0, len(ids))
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.ID, &m.GuildID, &m.Name); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, &m)
	}

	return members, rows.Err()
}
