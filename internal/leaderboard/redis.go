package leaderboard

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	id "volunteerhub/pkg/domain"
)

// DefaultKey is the sorted set holding volunteer totals.
const DefaultKey = "volunteerhub:leaderboard:hours"

// Redis keeps totals in a sorted set scored by hours.
type Redis struct {
	client redis.Cmdable
	key    string
}

func NewRedis(client redis.Cmdable, key string) *Redis {
	if key == "" {
		key = DefaultKey
	}
	return &Redis{client: client, key: key}
}

// Record sets the user's score to total unless the stored score is higher.
func (b *Redis) Record(ctx context.Context, userID id.UserID, total float64) error {
	err := b.client.ZAddArgs(ctx, b.key, redis.ZAddArgs{
		GT:      true,
		Members: []redis.Z{{Score: total, Member: userID.String()}},
	}).Err()
	if err != nil {
		return fmt.Errorf("record leaderboard total: %w", err)
	}
	return nil
}

func (b *Redis) Top(ctx context.Context, n int) ([]Entry, error) {
	n = NormalizeLimit(n)
	scored, err := b.client.ZRevRangeWithScores(ctx, b.key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read leaderboard: %w", err)
	}
	entries := make([]Entry, 0, len(scored))
	for _, z := range scored {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		userID, err := id.ParseUserID(member)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{UserID: userID, TotalHours: z.Score})
	}
	return rank(entries), nil
}
