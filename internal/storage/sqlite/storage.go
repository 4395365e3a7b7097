package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/NetroScript/tf2pickup-server/internal/model"
	"github.com/NetroScript/tf2pickup-server/internal/storage"
)

// Storage is a SQLite-backed implementation of the storage interface
type Storage struct {
	db *sql.DB
}

// Open opens (or creates) the database file at path and migrates it
func Open(path string, logger *slog.Logger) (*Storage, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err := Migrate(db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

const playerColumns = `id, steam_id, name, avatar_url, role, etf2l_profile_id, has_accepted_rules,
	twitch_user_id, twitch_login, twitch_display_name, twitch_profile_image_url, joined_at`

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	args := playerArgs(player)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO players (`+playerColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...)
	if isConstraintViolation(err) {
		return model.ErrPlayerAlreadyRegistered
	}
	return err
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	args := playerArgs(player)
	// id goes last for the WHERE clause
	args = append(args[1:], args[0])
	res, err := s.db.ExecContext(ctx, `UPDATE players SET
		steam_id = ?, name = ?, avatar_url = ?, role = ?, etf2l_profile_id = ?, has_accepted_rules = ?,
		twitch_user_id = ?, twitch_login = ?, twitch_display_name = ?, twitch_profile_image_url = ?, joined_at = ?
		WHERE id = ?`, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrPlayerNotFound
	}
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return s.queryPlayer(ctx, `WHERE id = ?`, string(id))
}

func (s *Storage) GetPlayerBySteamID(ctx context.Context, steamID string) (*model.Player, error) {
	return s.queryPlayer(ctx, `WHERE steam_id = ?`, steamID)
}

func (s *Storage) GetPlayerByETF2LProfileID(ctx context.Context, profileID int) (*model.Player, error) {
	return s.queryPlayer(ctx, `WHERE etf2l_profile_id = ? ORDER BY joined_at, id LIMIT 1`, profileID)
}

func (s *Storage) GetPlayerByTwitchUserID(ctx context.Context, twitchUserID string) (*model.Player, error) {
	return s.queryPlayer(ctx, `WHERE twitch_user_id = ? ORDER BY joined_at, id LIMIT 1`, twitchUserID)
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	return s.queryPlayers(ctx, `ORDER BY joined_at, id`)
}

func (s *Storage) ListPlayersWithTwitchAccount(ctx context.Context) ([]*model.Player, error) {
	return s.queryPlayers(ctx, `WHERE twitch_user_id IS NOT NULL ORDER BY joined_at, id`)
}

func (s *Storage) queryPlayer(ctx context.Context, clause string, args ...any) (*model.Player, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players `+clause, args...)
	player, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPlayerNotFound
	}
	return player, err
}

func (s *Storage) queryPlayers(ctx context.Context, clause string, args ...any) ([]*model.Player, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+playerColumns+` FROM players `+clause, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	players := []*model.Player{}
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, player)
	}
	return players, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row scanner) (*model.Player, error) {
	var (
		p             model.Player
		id, role      string
		etf2lID       sql.NullInt64
		accepted      bool
		twitchUserID  sql.NullString
		twitchLogin   sql.NullString
		twitchName    sql.NullString
		twitchImage   sql.NullString
		joinedAtNanos int64
	)
	if err := row.Scan(&id, &p.SteamID, &p.Name, &p.AvatarURL, &role, &etf2lID, &accepted,
		&twitchUserID, &twitchLogin, &twitchName, &twitchImage, &joinedAtNanos); err != nil {
		return nil, err
	}

	p.ID = model.PlayerID(id)
	p.Role = model.Role(role)
	p.HasAcceptedRules = accepted
	p.JoinedAt = time.Unix(0, joinedAtNanos).UTC()
	if etf2lID.Valid {
		v := int(etf2lID.Int64)
		p.ETF2LProfileID = &v
	}
	if twitchUserID.Valid {
		p.TwitchTVUser = &model.TwitchTVUser{
			UserID:          twitchUserID.String,
			Login:           twitchLogin.String,
			DisplayName:     twitchName.String,
			ProfileImageURL: twitchImage.String,
		}
	}
	return &p, nil
}

// playerArgs returns values in playerColumns order
func playerArgs(p *model.Player) []any {
	var etf2lID sql.NullInt64
	if p.ETF2LProfileID != nil {
		etf2lID = sql.NullInt64{Int64: int64(*p.ETF2LProfileID), Valid: true}
	}
	var twitchUserID, twitchLogin, twitchName, twitchImage sql.NullString
	if tu := p.TwitchTVUser; tu != nil {
		twitchUserID = sql.NullString{String: tu.UserID, Valid: true}
		twitchLogin = sql.NullString{String: tu.Login, Valid: true}
		twitchName = sql.NullString{String: tu.DisplayName, Valid: true}
		twitchImage = sql.NullString{String: tu.ProfileImageURL, Valid: true}
	}
	return []any{
		string(p.ID), p.SteamID, p.Name, p.AvatarURL, string(p.Role), etf2lID, p.HasAcceptedRules,
		twitchUserID, twitchLogin, twitchName, twitchImage, p.JoinedAt.UnixNano(),
	}
}

func isConstraintViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT INTO games (id, number, state, launched_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET number = excluded.number, state = excluded.state, launched_at = excluded.launched_at`,
		string(game.ID), game.Number, string(game.State), game.LaunchedAt.UnixNano()); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM game_slots WHERE game_id = ?`, string(game.ID)); err != nil {
		return err
	}
	for _, slot := range game.Slots {
		if _, err := tx.ExecContext(ctx, `INSERT INTO game_slots (game_id, player_id, game_class) VALUES (?, ?, ?)`,
			string(game.ID), string(slot.PlayerID), string(slot.GameClass)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	games, err := s.queryGames(ctx, `WHERE g.id = ?`, string(id))
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, model.ErrGameNotFound
	}
	return games[0], nil
}

func (s *Storage) GetGamesForPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Game, error) {
	return s.queryGames(ctx, `WHERE g.id IN (SELECT game_id FROM game_slots WHERE player_id = ?)`, string(playerID))
}

// queryGames loads games with their slots, ordered by game number
func (s *Storage) queryGames(ctx context.Context, clause string, args ...any) ([]*model.Game, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT g.id, g.number, g.state, g.launched_at, gs.player_id, gs.game_class
		FROM games g LEFT JOIN game_slots gs ON gs.game_id = g.id `+clause+`
		ORDER BY g.number, gs.rowid`, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	games := []*model.Game{}
	var current *model.Game
	for rows.Next() {
		var (
			id, state       string
			number          int
			launchedAtNanos int64
			playerID, class sql.NullString
		)
		if err := rows.Scan(&id, &number, &state, &launchedAtNanos, &playerID, &class); err != nil {
			return nil, err
		}
		if current == nil || string(current.ID) != id {
			current = &model.Game{
				ID:         model.GameID(id),
				Number:     number,
				State:      model.GameState(state),
				LaunchedAt: time.Unix(0, launchedAtNanos).UTC(),
				Slots:      []model.GameSlot{},
			}
			games = append(games, current)
		}
		if playerID.Valid {
			current.Slots = append(current.Slots, model.GameSlot{
				PlayerID:  model.PlayerID(playerID.String),
				GameClass: model.GameClass(class.String),
			})
		}
	}
	return games, rows.Err()
}
