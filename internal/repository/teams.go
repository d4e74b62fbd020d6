package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nfl_dashboard/aggregator/internal/models"
	"nfl_dashboard/aggregator/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// TeamRepository handles team database operations
type TeamRepository struct {
	db *Database
}

const teamColumns = `id, abbreviation, name, city, conference, division, primary_color, secondary_color, placeholder`

// Upsert inserts or updates a team
func (r *TeamRepository) Upsert(ctx context.Context, team models.Team) (err error) {
	defer observe("upsert", "teams", time.Now(), &err)

	query := `
		INSERT INTO teams (` + teamColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			abbreviation = EXCLUDED.abbreviation,
			name = EXCLUDED.name,
			city = EXCLUDED.city,
			conference = EXCLUDED.conference,
			division = EXCLUDED.division,
			primary_color = EXCLUDED.primary_color,
			secondary_color = EXCLUDED.secondary_color,
			placeholder = EXCLUDED.placeholder
	`

	_, err = r.db.Pool.Exec(ctx, query,
		team.ID, team.Abbreviation, team.Name, team.City, team.Conference,
		team.Division, team.PrimaryColor, team.SecondaryColor, team.Placeholder,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert team: %w", err)
	}

	log.Debug().Str("team_id", team.ID).Bool("placeholder", team.Placeholder).Msg("Team upserted")
	return nil
}

// GetByID retrieves a team by id
func (r *TeamRepository) GetByID(ctx context.Context, id string) (_ *models.Team, err error) {
	defer observe("select", "teams", time.Now(), &err)

	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`

	team, err := scanTeam(r.db.Pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("team %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return team, nil
}

// List retrieves all teams ordered by id
func (r *TeamRepository) List(ctx context.Context) (_ []models.Team, err error) {
	defer observe("select", "teams", time.Now(), &err)

	rows, err := r.db.Pool.Query(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, *team)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team rows: %w", err)
	}
	return teams, nil
}

// Count returns the number of stored teams
func (r *TeamRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM teams`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count teams: %w", err)
	}
	return n, nil
}

func scanTeam(row pgx.Row) (*models.Team, error) {
	var t models.Team
	err := row.Scan(
		&t.ID, &t.Abbreviation, &t.Name, &t.City, &t.Conference,
		&t.Division, &t.PrimaryColor, &t.SecondaryColor, &t.Placeholder,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
