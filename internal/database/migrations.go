package database

type migration struct {
	id   int
	name string
	sql  string
}

var migrations = []migration{
	{
		id:   1,
		name: "initial_schema",
		sql: `
			-- Games table: one row per session
			CREATE TABLE games (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				map_id TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'active',
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				ended_at DATETIME
			);
			CREATE INDEX idx_games_status ON games(status);

			-- Game state: latest snapshot of each game as JSON
			CREATE TABLE game_state (
				game_id TEXT PRIMARY KEY,
				state_json TEXT NOT NULL,
				current_player_id TEXT,
				round INTEGER DEFAULT 1,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE
			);

			-- Game actions: every accepted or rejected order, for replay/debugging
			CREATE TABLE game_actions (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				game_id TEXT NOT NULL,
				player_id TEXT,
				round INTEGER NOT NULL DEFAULT 1,
				action_type TEXT NOT NULL,
				action_json TEXT NOT NULL,
				result_json TEXT,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE
			);
			CREATE INDEX idx_game_actions_game ON game_actions(game_id);
		`,
	},
	{
		id:   2,
		name: "action_round_index",
		sql:  `CREATE INDEX idx_game_actions_round ON game_actions(game_id, round);`,
	},
}
