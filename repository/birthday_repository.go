package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"birthdaybot/database"
	"birthdaybot/domain/entities"
	"birthdaybot/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// BirthdayRepository implements the BirthdayRepository interface
type BirthdayRepository struct {
	q Queryable
}

var _ interfaces.BirthdayRepository = (*BirthdayRepository)(nil)

// NewBirthdayRepository creates a new birthday repository
func NewBirthdayRepository(db *database.DB) *BirthdayRepository {
	return &BirthdayRepository{q: db.Pool}
}

// GetByDate returns the members whose birthday recurs on month/day, whatever the year
func (r *BirthdayRepository) GetByDate(ctx context.Context, month time.Month, day int) ([]entities.BirthdayMatch, error) {
	query := `
		SELECT guild_id, member_id
		FROM birthdays
		WHERE EXTRACT(MONTH FROM birthday_date) = $1
		  AND EXTRACT(DAY FROM birthday_date) = $2
		ORDER BY guild_id, member_id
	`

	rows, err := r.q.Query(ctx, query, int(month), day)
	if err != nil {
		return nil, fmt.Errorf("failed to query birthdays for %02d-%02d: %w", int(month), day, err)
	}
	defer rows.Close()

	var matches []entities.BirthdayMatch
	for rows.Next() {
		var match entities.BirthdayMatch
		if err := rows.Scan(&match.GuildID, &match.MemberID); err != nil {
			return nil, fmt.Errorf("failed to scan birthday match: %w", err)
		}
		matches = append(matches, match)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating birthday matches: %w", err)
	}

	return matches, nil
}

// Upsert creates the member's birthday or overwrites the stored date
func (r *BirthdayRepository) Upsert(ctx context.Context, birthday *entities.Birthday) error {
	query := `
		INSERT INTO birthdays (guild_id, member_id, birthday_date)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id, member_id)
		DO UPDATE SET birthday_date = EXCLUDED.birthday_date
	`

	_, err := r.q.Exec(ctx, query, birthday.GuildID, birthday.MemberID, birthday.Date)
	if err != nil {
		return fmt.Errorf("failed to upsert birthday for member %d in guild %d: %w", birthday.MemberID, birthday.GuildID, err)
	}

	return nil
}

// GetByMember returns the member's birthday, nil when none is stored
func (r *BirthdayRepository) GetByMember(ctx context.Context, guildID, memberID int64) (*entities.Birthday, error) {
	query := `
		SELECT guild_id, member_id, birthday_date
		FROM birthdays
		WHERE guild_id = $1 AND member_id = $2
	`

	var birthday entities.Birthday
	err := r.q.QueryRow(ctx, query, guildID, memberID).Scan(
		&birthday.GuildID,
		&birthday.MemberID,
		&birthday.Date,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get birthday for member %d in guild %d: %w", memberID, guildID, err)
	}

	return &birthday, nil
}

// GetByGuild returns the guild's roster in calendar order
func (r *BirthdayRepository) GetByGuild(ctx context.Context, guildID int64) ([]*entities.Birthday, error) {
	query := `
		SELECT guild_id, member_id, birthday_date
		FROM birthdays
		WHERE guild_id = $1
		ORDER BY EXTRACT(MONTH FROM birthday_date), EXTRACT(DAY FROM birthday_date), member_id
	`

	rows, err := r.q.Query(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to query birthdays for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var birthdays []*entities.Birthday
	for rows.Next() {
		var birthday entities.Birthday
		if err := rows.Scan(&birthday.GuildID, &birthday.MemberID, &birthday.Date); err != nil {
			return nil, fmt.Errorf("failed to scan birthday: %w", err)
		}
		birthdays = append(birthdays, &birthday)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating birthdays: %w", err)
	}

	return birthdays, nil
}
